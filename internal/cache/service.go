package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisService implements the Service interface using Redis
type RedisService struct {
	client *redis.Client
}

// NewRedisService creates a new Redis cache service
func NewRedisService(config *Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	// Test the connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

// assetURLKey builds the cache key for a signed asset URL
func assetURLKey(activityID, assetID uuid.UUID) string {
	return fmt.Sprintf("asset-url:%s:%s", activityID, assetID)
}

// assetURLCacheTTL returns the cache lifetime for a signed URL. The cached
// entry expires before the signature does, so a cache hit can never hand out
// a URL whose signature is already dead.
func assetURLCacheTTL(signatureTTL time.Duration) time.Duration {
	return signatureTTL * 9 / 10
}

// GetAssetURL returns the cached signed URL for an asset. The boolean
// reports whether a live entry was found.
func (r *RedisService) GetAssetURL(ctx context.Context, activityID, assetID uuid.UUID) (string, bool, error) {
	url, err := r.client.Get(ctx, assetURLKey(activityID, assetID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cached asset URL: %v", err)
	}
	return url, true, nil
}

// SetAssetURL caches a signed asset URL for slightly less than the lifetime
// of its signature
func (r *RedisService) SetAssetURL(ctx context.Context, activityID, assetID uuid.UUID, url string, signatureTTL time.Duration) error {
	ttl := assetURLCacheTTL(signatureTTL)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, assetURLKey(activityID, assetID), url, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache asset URL: %v", err)
	}
	return nil
}

// InvalidateAssetURL drops the cached URL for an asset
func (r *RedisService) InvalidateAssetURL(ctx context.Context, activityID, assetID uuid.UUID) error {
	return r.client.Del(ctx, assetURLKey(activityID, assetID)).Err()
}

// Close closes the Redis connection
func (r *RedisService) Close() error {
	return r.client.Close()
}
