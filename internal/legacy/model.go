package legacy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is a source-of-truth row describing one CAS activity in the old
// schema. The header image and every attached asset are stored inline as
// base64 payloads. Rows are read-only during migration and deleted afterwards.
type Activity struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	Title            string         `gorm:"not null" json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Status           string         `json:"status"`
	StartedOn        *time.Time     `json:"startedOn"`
	EndedOn          *time.Time     `json:"endedOn"`
	Hours            *float64       `json:"hours"`
	LearningOutcomes datatypes.JSON `gorm:"type:jsonb" json:"learningOutcomes"`
	HeaderImage      string         `gorm:"type:text" json:"-"`
	HeaderImageType  string         `json:"headerImageType"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Assets           []Asset        `gorm:"foreignKey:ActivityID" json:"assets"`
}

// TableName overrides the default table name
func (Activity) TableName() string { return "legacy_activities" }

// Asset is an old-schema attachment row with the file content inline as a
// base64 payload
type Asset struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;index" json:"activityId"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	Payload    string    `gorm:"type:text" json:"-"`
	Checksum   string    `json:"checksum"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName overrides the default table name
func (Asset) TableName() string { return "legacy_assets" }

// Customization is the old-schema row holding a user's layout, theme,
// content and custom-section settings as JSON blobs
type Customization struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Layout         datatypes.JSON `gorm:"type:jsonb" json:"layout"`
	Theme          datatypes.JSON `gorm:"type:jsonb" json:"theme"`
	Content        datatypes.JSON `gorm:"type:jsonb" json:"content"`
	CustomSections datatypes.JSON `gorm:"type:jsonb" json:"customSections"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// TableName overrides the default table name
func (Customization) TableName() string { return "legacy_customizations" }
