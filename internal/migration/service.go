package migration

import (
	"context"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/folionet/casfolio/backend/internal/logger"
	"github.com/folionet/casfolio/backend/internal/storage"
	"github.com/google/uuid"
)

// Run statuses reported to the caller
const (
	ResultCompleted = "completed"
	ResultDryRun    = "dry_run"
)

// Dependencies bundles the collaborators the orchestrator drives
type Dependencies struct {
	Legacy      LegacyStore
	Target      TargetStore
	Profiles    ProfileStore
	Logs        LogStore
	Objects     storage.ObjectStore
	Prober      TableProber
	Revalidator Revalidator
}

// Service is the legacy data migration orchestrator: a one-shot, idempotent,
// resumable ETL that moves a user's portfolio from the old schema (inline
// base64 blobs) to the new schema (object-storage-backed assets). The run is
// all-or-nothing: any failure rolls back every write made so far.
type Service struct {
	cfg         Config
	logger      logger.Logger
	legacy      LegacyStore
	target      TargetStore
	profiles    ProfileStore
	logs        LogStore
	objects     storage.ObjectStore
	prober      TableProber
	revalidator Revalidator
}

// NewService creates a new migration orchestrator
func NewService(cfg Config, deps Dependencies, log logger.Logger) *Service {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	return &Service{
		cfg:         cfg,
		logger:      log,
		legacy:      deps.Legacy,
		target:      deps.Target,
		profiles:    deps.Profiles,
		logs:        deps.Logs,
		objects:     deps.Objects,
		prober:      deps.Prober,
		revalidator: deps.Revalidator,
	}
}

// Status returns the migration log entry for a user, or nil when no run has
// ever been recorded
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*LogEntry, error) {
	entry, err := s.logs.Get(ctx, userID, s.cfg.Key)
	if err != nil {
		return nil, apperrors.NewMigrationError("failed to read migration log", err)
	}
	return entry, nil
}

// Run executes the legacy migration for one user. A prior completed run
// short-circuits with AlreadyMigrated set and no new writes. Any failure
// triggers best-effort rollback, marks the log failed, and propagates the
// error to the caller.
func (s *Service) Run(ctx context.Context, userID uuid.UUID) (*Result, error) {
	log := s.logger.WithUserID(userID.String())

	pf, err := s.preflight(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pf.AlreadyMigrated {
		log.LogInfo("Legacy migration already completed, skipping", nil)
		return &Result{
			Status:          ResultCompleted,
			AlreadyMigrated: true,
			Revalidated:     []string{},
		}, nil
	}

	if _, err := s.logs.MarkRunning(ctx, userID, s.cfg.Key); err != nil {
		return nil, apperrors.NewMigrationError("failed to mark migration running", err)
	}
	log.LogInfo("Legacy migration started", map[string]interface{}{
		"key":    s.cfg.Key,
		"dryRun": s.cfg.DryRun,
	})

	rc := NewRunContext(userID)
	result, runErr := s.execute(ctx, rc, log)
	if runErr != nil {
		s.rollback(ctx, rc)
		if err := s.logs.MarkFailed(ctx, userID, s.cfg.Key, runErr.Error()); err != nil {
			log.LogWarn("Failed to mark migration log failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, log.LogError(runErr, "Legacy migration failed")
	}

	log.LogInfo("Legacy migration finished", map[string]interface{}{
		"status":             result.Status,
		"migratedActivities": result.Summary.MigratedActivities,
		"migratedAssets":     result.Summary.MigratedAssets,
	})
	return result, nil
}

// execute performs the migration body after the log is marked running
func (s *Service) execute(ctx context.Context, rc *RunContext, log logger.Logger) (*Result, error) {
	activities, err := s.legacy.ListActivities(ctx, rc.UserID)
	if err != nil {
		return nil, apperrors.NewMigrationError("failed to list legacy activities", err)
	}
	for _, act := range activities {
		if err := s.migrateActivity(ctx, rc, act); err != nil {
			return nil, err
		}
	}

	customization, err := s.legacy.GetCustomization(ctx, rc.UserID)
	if err != nil {
		return nil, apperrors.NewMigrationError("failed to read legacy customization", err)
	}
	if customization != nil {
		applied, err := s.migrateCustomization(ctx, rc, customization)
		if err != nil {
			return nil, err
		}
		if applied {
			log.LogDebug("Legacy customization applied", nil)
		}
	}

	revalidated, err := s.revalidator.Revalidate(ctx, rc.UserID)
	if err != nil {
		return nil, err
	}
	if revalidated == nil {
		revalidated = []string{}
	}

	if s.cfg.DryRun {
		// Verification pathway: undo everything and record the sentinel
		// message so the log row is distinguishable from a real failure.
		s.rollback(ctx, rc)
		if err := s.logs.MarkFailed(ctx, rc.UserID, s.cfg.Key, DryRunMessage); err != nil {
			return nil, apperrors.NewMigrationError("failed to record dry run outcome", err)
		}
		return &Result{
			Status:      ResultDryRun,
			Summary:     rc.Snapshot(),
			Revalidated: revalidated,
			DryRun:      true,
		}, nil
	}

	purged, err := s.legacy.PurgeUser(ctx, rc.UserID)
	if err != nil {
		return nil, apperrors.NewMigrationError("failed to purge legacy rows", err)
	}
	rc.setPurged(purged)

	if err := s.logs.MarkCompleted(ctx, rc.UserID, s.cfg.Key); err != nil {
		return nil, apperrors.NewMigrationError("failed to mark migration completed", err)
	}

	return &Result{
		Status:      ResultCompleted,
		Summary:     rc.Snapshot(),
		Revalidated: revalidated,
	}, nil
}
