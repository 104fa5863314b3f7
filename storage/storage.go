// Package storage stores generated bill PDFs in an S3-compatible object
// store and hands out time-limited download links.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"panchayattax/config"
)

// ObjectStore is the subset of object storage the application needs.
type ObjectStore interface {
	// Put uploads size bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PresignGet returns a GET URL for key that expires after ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	// URL is the canonical, unsigned location of key.
	URL(key string) string
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageDriverMinio:
		return NewMinioStore(cfg.Bucket, cfg.Minio)
	case config.StorageDriverS3:
		return NewS3Store(ctx, cfg.Bucket, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func objectURL(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
