package migration

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/folionet/casfolio/backend/internal/activity"
	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/folionet/casfolio/backend/internal/legacy"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults applied when a legacy activity is missing optional fields
const (
	defaultCategory = "creativity"
	defaultStatus   = "draft"
)

func heroObjectPath(userID, activityID uuid.UUID) string {
	return fmt.Sprintf("legacy/%s/%s/header.jpg", userID, activityID)
}

func assetObjectPath(userID, activityID, assetID uuid.UUID, ext string) string {
	return fmt.Sprintf("legacy/%s/%s/assets/%s%s", userID, activityID, assetID, ext)
}

var mimeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// assetExtension picks the storage extension from the declared mime type,
// falling back to the original filename and finally to .bin
func assetExtension(mimeType, filename string) string {
	if ext, ok := mimeExtensions[strings.ToLower(mimeType)]; ok {
		return ext
	}
	if ext := filepath.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	return ".bin"
}

// migrateActivity moves one legacy activity into the new schema: header image
// first, then the activity row, then every attached asset with bounded
// concurrency. Any failure is fatal for the whole run.
func (s *Service) migrateActivity(ctx context.Context, rc *RunContext, src legacy.Activity) error {
	row := &activity.Activity{
		UserID:           rc.UserID,
		Title:            src.Title,
		Description:      src.Description,
		Category:         src.Category,
		Status:           src.Status,
		StartedOn:        src.StartedOn,
		EndedOn:          src.EndedOn,
		LearningOutcomes: src.LearningOutcomes,
	}
	if row.Category == "" {
		row.Category = defaultCategory
	}
	if row.Status == "" {
		row.Status = defaultStatus
	}
	if src.Hours != nil {
		row.Hours = *src.Hours
	}

	decoded, err := DecodeAssetPayload(src.HeaderImage)
	if err != nil {
		return err
	}
	if decoded != nil {
		contentType := src.HeaderImageType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		res, err := s.uploadObject(ctx, s.cfg.HeroBucket, heroObjectPath(rc.UserID, src.ID), decoded.Data, contentType, decoded.Checksum)
		if err != nil {
			return err
		}
		rc.trackUpload(res)
		row.HeroBucket = res.Bucket
		row.HeroPath = res.Path
		row.HeroChecksum = res.Checksum
	}

	if err := s.target.InsertActivity(ctx, row); err != nil {
		return apperrors.NewMigrationError(
			fmt.Sprintf("failed to insert migrated activity for legacy activity %s", src.ID), err)
	}
	rc.trackActivity(row.ID)

	if len(src.Assets) == 0 {
		return nil
	}

	// Fan out asset uploads with at most AssetConcurrency in flight. One
	// failure cancels the remaining in-flight and queued work.
	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.AssetConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, asset := range src.Assets {
		g.Go(func() error {
			return s.migrateAsset(gctx, rc, row.ID, src.ID, asset)
		})
	}

	return g.Wait()
}

// migrateAsset moves one legacy asset: decode, upload, insert the new-schema
// row. Assets with no decodable payload are skipped silently; that is not an
// error at the per-asset level.
func (s *Service) migrateAsset(ctx context.Context, rc *RunContext, activityID, legacyActivityID uuid.UUID, src legacy.Asset) error {
	decoded, err := DecodeAssetPayload(src.Payload)
	if err != nil {
		return err
	}
	if decoded == nil {
		return nil
	}

	ext := assetExtension(src.MimeType, src.Filename)
	path := assetObjectPath(rc.UserID, legacyActivityID, src.ID, ext)
	contentType := src.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	res, err := s.uploadObject(ctx, s.cfg.AssetBucket, path, decoded.Data, contentType, decoded.Checksum)
	if err != nil {
		return err
	}
	rc.trackUpload(res)

	row := &activity.Asset{
		ActivityID: activityID,
		Filename:   src.Filename,
		MimeType:   src.MimeType,
		Bucket:     res.Bucket,
		Path:       res.Path,
		Checksum:   res.Checksum,
		Size:       res.Size,
	}
	if err := s.target.InsertAsset(ctx, row); err != nil {
		return apperrors.NewMigrationError(
			fmt.Sprintf("failed to insert migrated asset for legacy asset %s", src.ID), err)
	}
	rc.trackAsset(row.ID)
	return nil
}
