package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/folionet/casfolio/backend/internal/migration"
)

// currentUserID resolves the authenticated user from the X-User-ID header.
// Authentication itself happens upstream at the gateway; this service trusts
// the forwarded identity.
func (a *App) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		a.responses.UnauthorizedResponse(c, "missing X-User-ID header")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		a.responses.ValidationErrorResponse(c, "X-User-ID", "must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// handleRunLegacyMigration triggers the legacy portfolio migration for the
// authenticated user
func (a *App) handleRunLegacyMigration(c *gin.Context) {
	userID, ok := a.currentUserID(c)
	if !ok {
		return
	}

	result, err := a.migration.Run(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, migration.ErrAlreadyRunning):
			a.responses.ConflictResponse(c, apperrors.ErrMsgMigrationRunning)
		case errors.Is(err, migration.ErrDisabled):
			a.responses.ErrorResponse(c, http.StatusServiceUnavailable, "MIGRATION_DISABLED", apperrors.ErrMsgMigrationDisabled, nil)
		default:
			a.responses.InternalErrorResponse(c, "legacy migration failed", err)
		}
		return
	}

	a.responses.SuccessResponse(c, result, "Legacy migration finished")
}

// handleLegacyMigrationStatus returns the migration log entry for the
// authenticated user
func (a *App) handleLegacyMigrationStatus(c *gin.Context) {
	userID, ok := a.currentUserID(c)
	if !ok {
		return
	}

	entry, err := a.migration.Status(c.Request.Context(), userID)
	if err != nil {
		a.responses.InternalErrorResponse(c, "failed to read migration status", err)
		return
	}
	if entry == nil {
		a.responses.NotFoundResponse(c, "no migration recorded for this user")
		return
	}

	a.responses.SuccessResponse(c, entry, "")
}

// handleAssetURL returns a signed download URL for a migrated asset. URLs
// are cached in Redis for slightly less than their validity window so a
// cached URL never outlives its signature.
func (a *App) handleAssetURL(c *gin.Context) {
	if _, ok := a.currentUserID(c); !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		a.responses.ValidationErrorResponse(c, "id", "must be a valid UUID")
		return
	}
	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		a.responses.ValidationErrorResponse(c, "assetId", "must be a valid UUID")
		return
	}

	cached, found, err := a.cache.GetAssetURL(c.Request.Context(), activityID, assetID)
	if err != nil {
		a.logger.LogWarn("Failed to read cached signed URL", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if found {
		a.responses.SuccessResponse(c, gin.H{"url": cached}, "")
		return
	}

	asset, err := a.activities.GetAsset(c.Request.Context(), activityID, assetID)
	if err != nil {
		a.responses.InternalErrorResponse(c, "failed to load asset", err)
		return
	}
	if asset == nil {
		a.responses.NotFoundResponse(c, "asset not found")
		return
	}

	ttl := a.Config.Storage.SignedURLTTL
	url, err := a.objects.SignedURL(c.Request.Context(), asset.Bucket, asset.Path, ttl)
	if err != nil {
		a.responses.InternalErrorResponse(c, "failed to sign asset URL", err)
		return
	}

	if err := a.cache.SetAssetURL(c.Request.Context(), activityID, assetID, url, ttl); err != nil {
		a.logger.LogWarn("Failed to cache signed URL", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.responses.SuccessResponse(c, gin.H{"url": url}, "")
}
