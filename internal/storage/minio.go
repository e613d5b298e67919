package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"datapost/internal/config"
)

// ErrInvalidConfig is returned by NewMinIO when a required setting is empty.
var ErrInvalidConfig = errors.New("invalid minio config")

const setupTimeout = 10 * time.Second

// MinIOStore is the media store on an S3-compatible bucket. Requests go
// through a traced transport. Safe for concurrent use.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

var _ Storage = (*MinIOStore)(nil)

// NewMinIO connects to the bucket in cfg, creating it when missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStore{client: cli, bucket: cfg.Bucket}, nil
}

func validate(cfg config.MinIOConfig) error {
	switch {
	case cfg.Endpoint == "":
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return fmt.Errorf("%w: credentials are required", ErrInvalidConfig)
	case cfg.Bucket == "":
		return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	return nil
}

// Put streams r to key.
func (m *MinIOStore) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (Object, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %q: %w", key, err)
	}

	modified := info.LastModified
	if modified.IsZero() {
		modified = time.Now()
	}
	return Object{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: modified,
		Metadata:     opt.Metadata,
	}, nil
}

// PresignGet returns a download URL valid for expiry. Browsers save the
// object under the last element of key.
func (m *MinIOStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, downloadParams(key))
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return u.String(), nil
}

func downloadParams(key string) url.Values {
	v := url.Values{}
	v.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": path.Base(key),
	}))
	return v
}
