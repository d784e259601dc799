package storage

import (
	"context"
	"time"
)

// ObjectStore defines the object storage operations consumed by the
// application. Uploads overwrite any existing object at the same path.
type ObjectStore interface {
	UploadObject(ctx context.Context, bucket, path string, data []byte, contentType string) error
	RemoveObjects(ctx context.Context, bucket string, paths []string) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	Close() error
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogError(err error, msg string) error
}
