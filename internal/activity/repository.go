package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository writes and deletes new-schema rows
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new activity repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertActivity inserts a new-schema activity row. The store assigns the id.
func (r *Repository) InsertActivity(ctx context.Context, row *Activity) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert activity: %v", err)
	}
	return nil
}

// InsertAsset inserts a new-schema asset row. The store assigns the id.
func (r *Repository) InsertAsset(ctx context.Context, row *Asset) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert activity asset: %v", err)
	}
	return nil
}

// GetAsset fetches one asset belonging to the given activity, or nil when it
// does not exist
func (r *Repository) GetAsset(ctx context.Context, activityID, assetID uuid.UUID) (*Asset, error) {
	var asset Asset
	err := r.db.WithContext(ctx).First(&asset, "id = ? AND activity_id = ?", assetID, activityID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch asset %s: %v", assetID, err)
	}
	return &asset, nil
}

// DeleteAssets removes the given asset rows
func (r *Repository) DeleteAssets(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Asset{}).Error; err != nil {
		return fmt.Errorf("failed to delete activity assets: %v", err)
	}
	return nil
}

// DeleteActivities removes the given activity rows
func (r *Repository) DeleteActivities(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Activity{}).Error; err != nil {
		return fmt.Errorf("failed to delete activities: %v", err)
	}
	return nil
}
