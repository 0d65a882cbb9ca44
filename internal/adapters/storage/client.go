package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client implements ObjectStore on MinIO.
type Client struct {
	minio         *minio.Client
	maxObjectSize int64
}

// New connects to the configured MinIO endpoint. It fails when MinIO is not configured.
func New(cfg Config) (*Client, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, errors.New("minio is not configured")
	}

	mc, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Client{minio: mc, maxObjectSize: cfg.GetMinIOMaxFileSize()}, nil
}

func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.minio.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.minio.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (c *Client) Put(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error {
	if err := c.ValidateContentType(contentType); err != nil {
		return err
	}
	if err := c.ValidateSize(size); err != nil {
		return err
	}

	if _, err := c.minio.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (c *Client) PresignDownload(ctx context.Context, bucket, key string, ttl time.Duration) (PresignedURL, error) {
	params := url.Values{}
	params.Set("response-content-disposition", attachment(path.Base(key)))

	expiresAt := time.Now().Add(ttl)
	link, err := c.minio.PresignedGetObject(ctx, bucket, key, ttl, params)
	if err != nil {
		return PresignedURL{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return PresignedURL{URL: link.String(), Key: key, ExpiresAt: expiresAt}, nil
}

// attachment builds a Content-Disposition value with the file name quoted
// (or RFC 2231 encoded when it is not plain ASCII).
func attachment(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
}

var _ ObjectStore = (*Client)(nil)
