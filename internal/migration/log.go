package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status represents the state of a migration run in the log
type Status string

// Migration log states. A row is created on the first transition to running;
// pending describes the absence of a row.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// LogEntry is the persisted record of one migration per (user, key) pair.
// Rows are never deleted; they serve as both idempotency guard and audit
// trail. The unique index on (user_id, migration_key) is the upsert conflict
// target enforcing the single-row-per-user invariant.
type LogEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_migration_logs_user_key" json:"userId"`
	MigrationKey string     `gorm:"not null;uniqueIndex:idx_migration_logs_user_key" json:"migrationKey"`
	Status       Status     `gorm:"type:string;not null;default:'pending'" json:"status"`
	StartedAt    *time.Time `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updatedAt"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

// TableName overrides the default table name
func (LogEntry) TableName() string { return "migration_logs" }

// applyRunning moves an entry to running: started_at is set only if not
// already set (idempotent across re-entry) and any prior error is cleared.
func applyRunning(entry *LogEntry, now time.Time) {
	entry.Status = StatusRunning
	if entry.StartedAt == nil {
		entry.StartedAt = &now
	}
	entry.CompletedAt = nil
	entry.ErrorMessage = nil
	entry.UpdatedAt = now
}

// applyCompleted moves an entry to completed, preserving started_at
func applyCompleted(entry *LogEntry, now time.Time) {
	entry.Status = StatusCompleted
	entry.CompletedAt = &now
	entry.ErrorMessage = nil
	entry.UpdatedAt = now
}

// applyFailed moves an entry to failed, preserving started_at
func applyFailed(entry *LogEntry, message string, now time.Time) {
	entry.Status = StatusFailed
	entry.CompletedAt = nil
	entry.ErrorMessage = &message
	entry.UpdatedAt = now
}

// LogStore persists migration log entries
type LogStore interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (*LogEntry, error)
	MarkRunning(ctx context.Context, userID uuid.UUID, key string) (*LogEntry, error)
	MarkCompleted(ctx context.Context, userID uuid.UUID, key string) error
	MarkFailed(ctx context.Context, userID uuid.UUID, key, message string) error
}

// GormLogStore implements LogStore on the relational store
type GormLogStore struct {
	db *gorm.DB
}

// NewGormLogStore creates a new migration log store
func NewGormLogStore(db *gorm.DB) *GormLogStore {
	return &GormLogStore{db: db}
}

// Get returns the log entry for (user, key), or nil when none exists
func (s *GormLogStore) Get(ctx context.Context, userID uuid.UUID, key string) (*LogEntry, error) {
	var entry LogEntry
	err := s.db.WithContext(ctx).First(&entry, "user_id = ? AND migration_key = ?", userID, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch migration log for user %s: %v", userID, err)
	}
	return &entry, nil
}

// MarkRunning transitions the entry to running, creating it if necessary
func (s *GormLogStore) MarkRunning(ctx context.Context, userID uuid.UUID, key string) (*LogEntry, error) {
	entry, err := s.Get(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		entry = &LogEntry{UserID: userID, MigrationKey: key}
	}
	applyRunning(entry, time.Now())
	if err := s.upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkCompleted transitions the entry to completed
func (s *GormLogStore) MarkCompleted(ctx context.Context, userID uuid.UUID, key string) error {
	entry, err := s.Get(ctx, userID, key)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &LogEntry{UserID: userID, MigrationKey: key}
	}
	applyCompleted(entry, time.Now())
	return s.upsert(ctx, entry)
}

// MarkFailed transitions the entry to failed with the given error message
func (s *GormLogStore) MarkFailed(ctx context.Context, userID uuid.UUID, key, message string) error {
	entry, err := s.Get(ctx, userID, key)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &LogEntry{UserID: userID, MigrationKey: key}
	}
	applyFailed(entry, message, time.Now())
	return s.upsert(ctx, entry)
}

// upsert writes the entry using (user_id, migration_key) as the conflict
// target, so at most one row per pair can ever exist
func (s *GormLogStore) upsert(ctx context.Context, entry *LogEntry) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "migration_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "started_at", "completed_at", "updated_at", "error_message",
		}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert migration log for user %s: %v", entry.UserID, err)
	}
	return nil
}
