package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/google/uuid"
)

// Sentinel causes surfaced to the API layer so it can pick status codes
var (
	ErrDisabled       = errors.New("legacy migration is disabled")
	ErrAlreadyRunning = errors.New("migration already running")
)

// requiredTable pairs a table name with a cheap probe column. The checklist
// is data so it can grow without touching control flow.
type requiredTable struct {
	name   string
	column string
}

var requiredTables = []requiredTable{
	{"legacy_activities", "id"},
	{"legacy_assets", "id"},
	{"legacy_customizations", "user_id"},
	{"activities", "id"},
	{"activity_assets", "id"},
	{"migration_logs", "id"},
}

// Preflight is the outcome of the pre-run checks
type Preflight struct {
	Log             *LogEntry
	AlreadyMigrated bool
}

// preflight verifies the feature flag, probes every required table and
// bucket, rejects concurrent runs, and confirms the user profile exists.
// It performs no mutation; any failure aborts before the run starts.
func (s *Service) preflight(ctx context.Context, userID uuid.UUID) (*Preflight, error) {
	if !s.cfg.Enabled {
		return nil, apperrors.NewMigrationError(apperrors.ErrMsgMigrationDisabled, ErrDisabled)
	}

	for _, table := range requiredTables {
		if err := s.prober.ProbeTable(ctx, table.name, table.column); err != nil {
			return nil, apperrors.NewMigrationError(
				fmt.Sprintf("required table %q is unavailable", table.name), err)
		}
	}

	for _, bucket := range []string{s.cfg.HeroBucket, s.cfg.AssetBucket} {
		exists, err := s.objects.BucketExists(ctx, bucket)
		if err != nil {
			return nil, apperrors.NewMigrationError(
				fmt.Sprintf("failed to check bucket %q", bucket), err)
		}
		if !exists {
			return nil, apperrors.NewMigrationError(
				fmt.Sprintf("required bucket %q does not exist", bucket), nil)
		}
	}

	entry, err := s.logs.Get(ctx, userID, s.cfg.Key)
	if err != nil {
		return nil, apperrors.NewMigrationError("failed to read migration log", err)
	}
	if entry != nil && entry.Status == StatusRunning {
		return nil, apperrors.NewMigrationError(
			fmt.Sprintf("migration %q is already running for user %s", s.cfg.Key, userID), ErrAlreadyRunning)
	}

	_, found, err := s.profiles.GetSettings(ctx, userID)
	if err != nil {
		return nil, apperrors.NewMigrationError("failed to read user profile", err)
	}
	if !found {
		return nil, apperrors.NewMigrationError(
			fmt.Sprintf("%s: %s", apperrors.ErrMsgProfileNotFound, userID), nil)
	}

	return &Preflight{
		Log:             entry,
		AlreadyMigrated: entry != nil && entry.Status == StatusCompleted,
	}, nil
}
