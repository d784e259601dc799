package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service defines the caching operations consumed by the API layer
type Service interface {
	GetAssetURL(ctx context.Context, activityID, assetID uuid.UUID) (string, bool, error)
	SetAssetURL(ctx context.Context, activityID, assetID uuid.UUID, url string, signatureTTL time.Duration) error
	InvalidateAssetURL(ctx context.Context, activityID, assetID uuid.UUID) error
	Close() error
}
