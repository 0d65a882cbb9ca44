// Package storage is the MinIO client export archiving writes through.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL is a time-limited download link for one object.
type PresignedURL struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the slice of S3 the exports need.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	// Put stores reader at key, replacing any existing object.
	Put(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error
	// PresignDownload links to key; the browser saves it under the key's base name.
	PresignDownload(ctx context.Context, bucket, key string, ttl time.Duration) (PresignedURL, error)
}

type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
