package migration

import (
	"context"
	"encoding/json"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/folionet/casfolio/backend/internal/legacy"
)

// normalizeObject coerces a raw JSON blob to a plain object. Anything that is
// not a JSON object (arrays, scalars, invalid JSON) becomes nil rather than
// being passed through.
func normalizeObject(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil
	}
	return obj
}

// normalizeSections coerces a raw JSON blob to a list of objects, dropping
// any entry that is not an object
func normalizeSections(raw []byte) []map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var decoded []interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	sections := make([]map[string]interface{}, 0, len(decoded))
	for _, entry := range decoded {
		if obj, ok := entry.(map[string]interface{}); ok {
			sections = append(sections, obj)
		}
	}
	if len(sections) == 0 {
		return nil
	}
	return sections
}

// migrateCustomization transplants the user's legacy layout/theme/content
// settings onto the profile row as a full replacement. Returns false when
// the legacy row carries nothing worth applying. The pre-migration settings
// value is snapshotted into the run context exactly once, before the write,
// so rollback can restore it verbatim.
func (s *Service) migrateCustomization(ctx context.Context, rc *RunContext, src *legacy.Customization) (bool, error) {
	layout := normalizeObject(src.Layout)
	theme := normalizeObject(src.Theme)
	content := normalizeObject(src.Content)
	sections := normalizeSections(src.CustomSections)

	if layout == nil && theme == nil && content == nil && sections == nil {
		return false, nil
	}

	if !rc.snapshotTaken {
		current, _, err := s.profiles.GetSettings(ctx, rc.UserID)
		if err != nil {
			return false, apperrors.NewMigrationError("failed to snapshot current settings", err)
		}
		rc.settingsSnapshot = current
		rc.snapshotTaken = true
	}

	settings := map[string]interface{}{
		"layout":         layout,
		"theme":          theme,
		"content":        content,
		"customSections": sections,
	}
	encoded, err := json.Marshal(settings)
	if err != nil {
		return false, apperrors.NewMigrationError("failed to encode migrated settings", err)
	}

	if err := s.profiles.ReplaceSettings(ctx, rc.UserID, encoded); err != nil {
		return false, apperrors.NewMigrationError("failed to write migrated settings", err)
	}
	return true, nil
}
