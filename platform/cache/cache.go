// Package cache provides a small JSON cache on top of Redis.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadscout_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

// Connect initializes a Redis client from a redis:// URL or a host:port address.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := strings.TrimSpace(cfg.GetRedisURL())
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if cfg.GetRedisTLSInsecure() {
			if opt.TLSConfig == nil {
				opt.TLSConfig = &tls.Config{}
			}
			opt.TLSConfig.InsecureSkipVerify = true
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// JSONCache stores JSON-encoded values under a key prefix.
// A nil *JSONCache, or one built without a client, behaves as an always-empty cache.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJSONCache creates a cache writing keys as prefix + ":" + key.
func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

// Enabled reports whether values are actually stored.
func (c *JSONCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the value at key into dest. It returns ErrMiss when absent.
func (c *JSONCache) Get(ctx context.Context, key string, dest any) error {
	if !c.Enabled() {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set stores value at key with the cache TTL.
func (c *JSONCache) Set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), raw, c.ttl).Err()
}

// Delete removes key.
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, c.key(key)).Err()
}

// DeletePrefix removes every key starting with keyPrefix.
func (c *JSONCache) DeletePrefix(ctx context.Context, keyPrefix string) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, c.key(keyPrefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *JSONCache) key(key string) string {
	return c.prefix + ":" + key
}
