package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity represents one CAS activity in the new schema. The header image
// lives in object storage and is referenced by bucket, path and checksum
// instead of an inline payload.
type Activity struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	Title            string         `gorm:"not null" json:"title"`
	Description      string         `json:"description"`
	Category         string         `gorm:"not null" json:"category"`
	Status           string         `gorm:"not null" json:"status"`
	StartedOn        *time.Time     `json:"startedOn"`
	EndedOn          *time.Time     `json:"endedOn"`
	Hours            float64        `gorm:"default:0" json:"hours"`
	LearningOutcomes datatypes.JSON `gorm:"type:jsonb" json:"learningOutcomes"`
	HeroBucket       string         `json:"heroBucket,omitempty"`
	HeroPath         string         `json:"heroPath,omitempty"`
	HeroChecksum     string         `json:"heroChecksum,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Assets           []Asset        `gorm:"foreignKey:ActivityID" json:"assets"`
}

// TableName overrides the default table name
func (Activity) TableName() string { return "activities" }

// Asset represents a file attached to an activity, stored in object storage
// and referenced by bucket, path and checksum
type Asset struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;index" json:"activityId"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	Bucket     string    `gorm:"not null" json:"bucket"`
	Path       string    `gorm:"not null" json:"path"`
	Checksum   string    `gorm:"not null" json:"checksum"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName overrides the default table name
func (Asset) TableName() string { return "activity_assets" }
