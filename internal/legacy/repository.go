package legacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and purges old-schema rows. The migration never mutates
// legacy data; it only reads it and, after a successful run, deletes it.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new legacy repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActivities returns all legacy activities for a user with their assets,
// oldest first
func (r *Repository) ListActivities(ctx context.Context, userID uuid.UUID) ([]Activity, error) {
	var activities []Activity
	err := r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy activities for user %s: %v", userID, err)
	}
	return activities, nil
}

// GetCustomization returns the user's legacy customization row, or nil when
// none exists
func (r *Repository) GetCustomization(ctx context.Context, userID uuid.UUID) (*Customization, error) {
	var customization Customization
	err := r.db.WithContext(ctx).First(&customization, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch legacy customization for user %s: %v", userID, err)
	}
	return &customization, nil
}

// PurgeUser deletes all legacy rows for a user and returns the number of
// legacy activities removed. Assets are removed before their parent
// activities to respect referential integrity.
func (r *Repository) PurgeUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var purged int
	// One transaction: a partial purge must never survive a failure.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activityIDs []uuid.UUID
		if err := tx.Model(&Activity{}).Where("user_id = ?", userID).Pluck("id", &activityIDs).Error; err != nil {
			return fmt.Errorf("failed to collect legacy activity ids for user %s: %v", userID, err)
		}

		if len(activityIDs) > 0 {
			if err := tx.Where("activity_id IN ?", activityIDs).Delete(&Asset{}).Error; err != nil {
				return fmt.Errorf("failed to purge legacy assets for user %s: %v", userID, err)
			}
			if err := tx.Where("user_id = ?", userID).Delete(&Activity{}).Error; err != nil {
				return fmt.Errorf("failed to purge legacy activities for user %s: %v", userID, err)
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&Customization{}).Error; err != nil {
			return fmt.Errorf("failed to purge legacy customization for user %s: %v", userID, err)
		}

		purged = len(activityIDs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
