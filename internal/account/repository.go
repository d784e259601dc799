package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides access to user profile rows
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new account repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get fetches a user by id; returns nil when the profile row does not exist
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user %s: %v", id, err)
	}
	return &user, nil
}

// GetSettings returns the raw settings value for a user. The boolean reports
// whether the profile row exists; a nil payload with found=true means the
// settings column is NULL.
func (r *Repository) GetSettings(ctx context.Context, id uuid.UUID) ([]byte, bool, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, nil
	}
	if len(user.Settings) == 0 {
		return nil, true, nil
	}
	return []byte(user.Settings), true, nil
}

// ReplaceSettings overwrites the settings column with the given raw value.
// A nil value stores SQL NULL.
func (r *Repository) ReplaceSettings(ctx context.Context, id uuid.UUID, settings []byte) error {
	updates := map[string]interface{}{
		"settings":   nil,
		"updated_at": time.Now(),
	}
	if settings != nil {
		updates["settings"] = settings
	}
	if err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update settings for user %s: %v", id, err)
	}
	return nil
}
