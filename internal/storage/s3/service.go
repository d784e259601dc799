package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/folionet/casfolio/backend/internal/storage"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// Service implements the storage.ObjectStore interface against an
// S3-compatible endpoint
type Service struct {
	client *minio.Client
	logger storage.Logger
}

// NewService creates a new S3 service instance
func NewService(cfg *storage.S3Config, logger storage.Logger) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create S3 client", err)
	}

	return &Service{
		client: client,
		logger: logger,
	}, nil
}

// UploadObject uploads a byte payload to the given bucket and path,
// overwriting any object already stored there
func (s *Service) UploadObject(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, bucket, path, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to upload object %s/%s", bucket, path), err)
	}
	return nil
}

// RemoveObjects removes the given paths from a bucket in one bulk call
func (s *Service) RemoveObjects(ctx context.Context, bucket string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(paths))
	for _, path := range paths {
		objectsCh <- minio.ObjectInfo{Key: path}
	}
	close(objectsCh)

	var firstErr error
	for removeErr := range s.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil && firstErr == nil {
			firstErr = apperrors.NewStorageError(
				fmt.Sprintf("failed to remove object %s/%s", bucket, removeErr.ObjectName), removeErr.Err)
		}
	}
	return firstErr
}

// BucketExists reports whether the given bucket is reachable
func (s *Service) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, apperrors.NewStorageError(fmt.Sprintf("failed to check bucket %s", bucket), err)
	}
	return exists, nil
}

// SignedURL returns a time-limited URL granting read access to a private object
func (s *Service) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, bucket, path, ttl, url.Values{})
	if err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to sign URL for %s/%s", bucket, path), err)
	}
	return signed.String(), nil
}

// Close closes any open S3 connections and resources
func (s *Service) Close() error {
	return nil
}
