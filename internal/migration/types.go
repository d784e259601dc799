package migration

import (
	"context"
	"sync"
	"time"

	"github.com/folionet/casfolio/backend/internal/activity"
	"github.com/folionet/casfolio/backend/internal/legacy"
	"github.com/google/uuid"
)

// DefaultKey identifies the legacy portfolio migration in the migration log.
// Paired with the user id it forms the uniqueness key for log rows.
const DefaultKey = "legacy-portfolio-v1"

// DryRunMessage is the sentinel error message recorded on the migration log
// when a dry run completes. Callers inspecting the log distinguish dry runs
// from genuine failures by matching on this text.
const DryRunMessage = "dry run: all changes rolled back"

// Config holds migration orchestrator settings
type Config struct {
	Enabled            bool          `mapstructure:"enabled"`
	Key                string        `mapstructure:"key"`
	DryRun             bool          `mapstructure:"dryRun"`
	UploadRetryLimit   int           `mapstructure:"uploadRetryLimit"`
	AssetConcurrency   int           `mapstructure:"assetConcurrency"`
	RetryInitialDelay  time.Duration `mapstructure:"retryInitialDelay"`
	RetryMaxDelay      time.Duration `mapstructure:"retryMaxDelay"`
	RetryBackoffFactor float64       `mapstructure:"retryBackoffFactor"`
	RevalidateURL      string        `mapstructure:"revalidateURL"`
	RevalidateTimeout  time.Duration `mapstructure:"revalidateTimeout"`
	HeroBucket         string        `mapstructure:"heroBucket"`
	AssetBucket        string        `mapstructure:"assetBucket"`
}

// Summary accumulates counts over one migration run
type Summary struct {
	MigratedActivities     int `json:"migratedActivities"`
	MigratedAssets         int `json:"migratedAssets"`
	PurgedLegacyActivities int `json:"purgedLegacyActivities"`
}

// Result is returned to the caller after a run
type Result struct {
	Status          string   `json:"status"`
	Summary         Summary  `json:"summary"`
	AlreadyMigrated bool     `json:"alreadyMigrated"`
	Revalidated     []string `json:"revalidated"`
	DryRun          bool     `json:"dryRun"`
}

// UploadResult describes one successfully uploaded object, tracked for the
// duration of a run so it can be rolled back
type UploadResult struct {
	Bucket   string
	Path     string
	Checksum string
	Size     int64
}

// RunContext carries the per-run rollback bookkeeping: ids of inserted rows,
// uploaded objects, and the pre-migration settings snapshot. It is scoped to
// a single run so concurrent runs for different users cannot cross-contaminate.
type RunContext struct {
	UserID uuid.UUID

	mu                 sync.Mutex
	insertedActivities []uuid.UUID
	insertedAssets     []uuid.UUID
	uploaded           []UploadResult
	summary            Summary

	settingsSnapshot []byte
	snapshotTaken    bool
}

// NewRunContext creates the bookkeeping context for one run
func NewRunContext(userID uuid.UUID) *RunContext {
	return &RunContext{UserID: userID}
}

func (rc *RunContext) trackActivity(id uuid.UUID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.insertedActivities = append(rc.insertedActivities, id)
	rc.summary.MigratedActivities++
}

func (rc *RunContext) trackAsset(id uuid.UUID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.insertedAssets = append(rc.insertedAssets, id)
	rc.summary.MigratedAssets++
}

func (rc *RunContext) trackUpload(res UploadResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.uploaded = append(rc.uploaded, res)
}

func (rc *RunContext) setPurged(count int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.summary.PurgedLegacyActivities = count
}

// Snapshot returns the current summary counts
func (rc *RunContext) Snapshot() Summary {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.summary
}

// TargetStore writes and deletes new-schema rows
type TargetStore interface {
	InsertActivity(ctx context.Context, row *activity.Activity) error
	InsertAsset(ctx context.Context, row *activity.Asset) error
	DeleteAssets(ctx context.Context, ids []uuid.UUID) error
	DeleteActivities(ctx context.Context, ids []uuid.UUID) error
}

// LegacyStore reads and purges old-schema rows
type LegacyStore interface {
	ListActivities(ctx context.Context, userID uuid.UUID) ([]legacy.Activity, error)
	GetCustomization(ctx context.Context, userID uuid.UUID) (*legacy.Customization, error)
	PurgeUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// ProfileStore reads and replaces the settings value on the user profile row
type ProfileStore interface {
	GetSettings(ctx context.Context, userID uuid.UUID) ([]byte, bool, error)
	ReplaceSettings(ctx context.Context, userID uuid.UUID, settings []byte) error
}

// TableProber issues a zero-row existence probe against a relational table
type TableProber interface {
	ProbeTable(ctx context.Context, table, column string) error
}

// Revalidator triggers downstream portfolio regeneration after a successful
// row migration
type Revalidator interface {
	Revalidate(ctx context.Context, userID uuid.UUID) ([]string, error)
}
