package migration

import "context"

// rollback undoes every write tracked in the run context: new-schema rows
// (children before parents), uploaded objects grouped per bucket, and the
// settings snapshot. It is best-effort and never returns an error — it runs
// from an already-failing path and must not mask the original failure.
func (s *Service) rollback(ctx context.Context, rc *RunContext) {
	log := s.logger.WithUserID(rc.UserID.String())

	if len(rc.insertedAssets) > 0 {
		if err := s.target.DeleteAssets(ctx, rc.insertedAssets); err != nil {
			log.LogWarn("Rollback: failed to delete migrated assets", map[string]interface{}{
				"count": len(rc.insertedAssets),
				"error": err.Error(),
			})
		}
	}

	if len(rc.insertedActivities) > 0 {
		if err := s.target.DeleteActivities(ctx, rc.insertedActivities); err != nil {
			log.LogWarn("Rollback: failed to delete migrated activities", map[string]interface{}{
				"count": len(rc.insertedActivities),
				"error": err.Error(),
			})
		}
	}

	pathsByBucket := make(map[string][]string)
	for _, up := range rc.uploaded {
		pathsByBucket[up.Bucket] = append(pathsByBucket[up.Bucket], up.Path)
	}
	for bucket, paths := range pathsByBucket {
		if err := s.objects.RemoveObjects(ctx, bucket, paths); err != nil {
			log.LogWarn("Rollback: failed to remove uploaded objects", map[string]interface{}{
				"bucket": bucket,
				"count":  len(paths),
				"error":  err.Error(),
			})
		}
	}

	if rc.snapshotTaken {
		// Restore verbatim, including an explicit NULL if that was the
		// prior state.
		if err := s.profiles.ReplaceSettings(ctx, rc.UserID, rc.settingsSnapshot); err != nil {
			log.LogWarn("Rollback: failed to restore settings snapshot", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
