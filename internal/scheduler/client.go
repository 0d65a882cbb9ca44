package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	segmentports "leadscout_backend/internal/segments/ports"
	"leadscout_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const defaultRebuildDelay = 30 * time.Second

type Client struct {
	client *asynq.Client
	queue  string
	delay  time.Duration
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	delay := cfg.GetSegmentRebuildDelay()
	if delay <= 0 {
		delay = defaultRebuildDelay
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
		delay:  delay,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleRebuild enqueues a delayed membership rebuild for the organization.
// While one is pending, further requests are absorbed by it.
func (c *Client) ScheduleRebuild(ctx context.Context, organizationID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewSegmentsRebuildTask(SegmentsRebuildPayload{OrganizationID: organizationID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(c.delay),
		asynq.Queue(c.queue),
		asynq.TaskID(segmentsRebuildTaskID(organizationID.String())),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

var _ segmentports.RebuildScheduler = (*Client)(nil)

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
