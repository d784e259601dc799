package migration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/folionet/casfolio/backend/internal/apperrors"
	"github.com/folionet/casfolio/backend/internal/legacy"
	"github.com/folionet/casfolio/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const (
	testHeroBucket  = "test-heroes"
	testAssetBucket = "test-assets"
)

func testConfig() Config {
	return Config{
		Enabled:          true,
		Key:              DefaultKey,
		UploadRetryLimit: 3,
		AssetConcurrency: 2,
		HeroBucket:       testHeroBucket,
		AssetBucket:      testAssetBucket,
	}
}

type testEnv struct {
	legacy      *fakeLegacyStore
	target      *fakeTargetStore
	profiles    *fakeProfileStore
	logs        *fakeLogStore
	objects     *fakeObjectStore
	prober      *fakeProber
	revalidator *fakeRevalidator
}

func newTestEnv() *testEnv {
	return &testEnv{
		legacy:      &fakeLegacyStore{},
		target:      newFakeTargetStore(),
		profiles:    &fakeProfileStore{exists: true},
		logs:        newFakeLogStore(),
		objects:     newFakeObjectStore(),
		prober:      &fakeProber{},
		revalidator: &fakeRevalidator{paths: []string{"/portfolio"}},
	}
}

func (e *testEnv) service(cfg Config) *Service {
	return NewService(cfg, Dependencies{
		Legacy:      e.legacy,
		Target:      e.target,
		Profiles:    e.profiles,
		Logs:        e.logs,
		Objects:     e.objects,
		Prober:      e.prober,
		Revalidator: e.revalidator,
	}, logger.NewNopLogger())
}

func b64(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func makeActivity(userID uuid.UUID, header string, assetPayloads ...string) legacy.Activity {
	act := legacy.Activity{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "Beach cleanup",
	}
	if header != "" {
		act.HeaderImage = b64(header)
		act.HeaderImageType = "image/png"
	}
	for i, payload := range assetPayloads {
		act.Assets = append(act.Assets, legacy.Asset{
			ID:         uuid.New(),
			ActivityID: act.ID,
			Filename:   fmt.Sprintf("photo-%d.jpg", i),
			MimeType:   "image/jpeg",
			Payload:    b64(payload),
		})
	}
	return act
}

func TestRunMigratesFullPortfolio(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{
		makeActivity(userID, "header-bytes", "asset-one", "asset-two"),
		makeActivity(userID, ""),
	}
	env.legacy.customization = &legacy.Customization{
		UserID: userID,
		Layout: datatypes.JSON(`{"columns":2}`),
		Theme:  datatypes.JSON(`{"accent":"teal"}`),
	}

	svc := env.service(testConfig())
	result, err := svc.Run(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, ResultCompleted, result.Status)
	assert.False(t, result.AlreadyMigrated)
	assert.Equal(t, 2, result.Summary.MigratedActivities)
	assert.Equal(t, 2, result.Summary.MigratedAssets)
	assert.Equal(t, 2, result.Summary.PurgedLegacyActivities)
	assert.Equal(t, []string{"/portfolio"}, result.Revalidated)

	assert.Equal(t, 2, env.target.activityCount())
	assert.Equal(t, 2, env.target.assetCount())
	assert.Equal(t, 3, env.objects.objectCount()) // header + two assets
	assert.True(t, env.legacy.purged)

	entry, err := env.logs.Get(context.Background(), userID, DefaultKey)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, StatusCompleted, entry.Status)
	assert.NotNil(t, entry.StartedAt)
	assert.NotNil(t, entry.CompletedAt)
	assert.Nil(t, entry.ErrorMessage)

	var settings map[string]interface{}
	require.NoError(t, json.Unmarshal(env.profiles.settings, &settings))
	assert.Equal(t, map[string]interface{}{"columns": float64(2)}, settings["layout"])
	assert.Equal(t, map[string]interface{}{"accent": "teal"}, settings["theme"])
	assert.Nil(t, settings["content"])
}

func TestRunAlreadyCompletedShortCircuits(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{makeActivity(userID, "header")}
	env.logs.seed(userID, DefaultKey, StatusCompleted)

	svc := env.service(testConfig())
	result, err := svc.Run(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, result.AlreadyMigrated)
	assert.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, []string{}, result.Revalidated)
	assert.Equal(t, 0, env.objects.objectCount())
	assert.Equal(t, 0, env.target.activityCount())
	assert.False(t, env.legacy.purged)
	assert.False(t, env.revalidator.called)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.logs.seed(userID, DefaultKey, StatusRunning)

	svc := env.service(testConfig())
	_, err := svc.Run(context.Background(), userID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyRunning))
	assert.Equal(t, 0, env.objects.objectCount())
}

func TestRunFailedIsRetryable(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{makeActivity(userID, "header")}
	env.logs.seed(userID, DefaultKey, StatusFailed)

	svc := env.service(testConfig())
	result, err := svc.Run(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, 1, result.Summary.MigratedActivities)
}

func TestRunDisabled(t *testing.T) {
	env := newTestEnv()
	cfg := testConfig()
	cfg.Enabled = false

	svc := env.service(cfg)
	_, err := svc.Run(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestRunPreflightFailures(t *testing.T) {
	t.Run("missing table", func(t *testing.T) {
		env := newTestEnv()
		env.prober.failTable = "legacy_assets"
		_, err := env.service(testConfig()).Run(context.Background(), uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "legacy_assets")
	})

	t.Run("missing bucket", func(t *testing.T) {
		env := newTestEnv()
		env.objects.missingBucket = testAssetBucket
		_, err := env.service(testConfig()).Run(context.Background(), uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), testAssetBucket)
	})

	t.Run("missing profile", func(t *testing.T) {
		env := newTestEnv()
		env.profiles.exists = false
		userID := uuid.New()
		_, err := env.service(testConfig()).Run(context.Background(), userID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), apperrors.ErrMsgProfileNotFound)

		// Preflight failures must not create a log row
		entry, getErr := env.logs.Get(context.Background(), userID, DefaultKey)
		require.NoError(t, getErr)
		assert.Nil(t, entry)
	})
}

func TestRunRollsBackOnFailure(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{
		makeActivity(userID, "header", "asset-one", "asset-two", "asset-three"),
	}
	env.legacy.customization = &legacy.Customization{
		UserID: userID,
		Layout: datatypes.JSON(`{"columns":1}`),
	}
	original := []byte(`{"theme":"legacy-dark"}`)
	env.profiles.settings = original
	env.revalidator.err = fmt.Errorf("revalidation endpoint returned 502")

	svc := env.service(testConfig())
	_, err := svc.Run(context.Background(), userID)
	require.Error(t, err)

	// Zero residue: every row, object and settings write undone
	assert.Equal(t, 0, env.target.activityCount())
	assert.Equal(t, 0, env.target.assetCount())
	assert.Equal(t, 0, env.objects.objectCount())
	assert.Equal(t, original, env.profiles.settings)
	assert.False(t, env.legacy.purged)

	entry, getErr := env.logs.Get(context.Background(), userID, DefaultKey)
	require.NoError(t, getErr)
	require.NotNil(t, entry)
	assert.Equal(t, StatusFailed, entry.Status)
	require.NotNil(t, entry.ErrorMessage)
	assert.Contains(t, *entry.ErrorMessage, "502")
}

func TestRunRollsBackOnExhaustedUpload(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{
		makeActivity(userID, "header", "asset-one", "asset-two"),
	}
	original := []byte(`{"theme":"legacy-dark"}`)
	env.profiles.settings = original
	// Header upload succeeds, every asset upload fails until retries run out
	env.objects.failUploadAt = 2

	svc := env.service(testConfig())
	_, err := svc.Run(context.Background(), userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), testAssetBucket)
	assert.Contains(t, err.Error(), "3 attempts")

	assert.Equal(t, 0, env.target.activityCount())
	assert.Equal(t, 0, env.target.assetCount())
	assert.Equal(t, 0, env.objects.objectCount())
	assert.Equal(t, original, env.profiles.settings)
	assert.False(t, env.legacy.purged)
	assert.False(t, env.revalidator.called)
}

func TestRunRollsBackOnAssetInsertFailure(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{
		makeActivity(userID, "", "asset-one", "asset-two", "asset-three", "asset-four"),
	}
	env.target.insertAssetErrAfter = 2

	svc := env.service(testConfig())
	_, err := svc.Run(context.Background(), userID)
	require.Error(t, err)

	assert.Equal(t, 0, env.target.activityCount())
	assert.Equal(t, 0, env.target.assetCount())
	assert.Equal(t, 0, env.objects.objectCount())
	assert.False(t, env.legacy.purged)
}

func TestRunRestoresNullSettingsSnapshot(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.customization = &legacy.Customization{
		UserID: userID,
		Theme:  datatypes.JSON(`{"accent":"red"}`),
	}
	env.profiles.settings = nil // profile exists, settings column is NULL
	env.revalidator.err = fmt.Errorf("boom")

	svc := env.service(testConfig())
	_, err := svc.Run(context.Background(), userID)
	require.Error(t, err)

	// The snapshot restore must write the NULL back, not skip the write
	require.NotEmpty(t, env.profiles.writes)
	assert.Nil(t, env.profiles.writes[len(env.profiles.writes)-1])
	assert.Nil(t, env.profiles.settings)
}

func TestRunDryRun(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{
		makeActivity(userID, "header", "asset-one"),
	}
	cfg := testConfig()
	cfg.DryRun = true

	svc := env.service(cfg)
	result, err := svc.Run(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, ResultDryRun, result.Status)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Summary.MigratedActivities)
	assert.Equal(t, 1, result.Summary.MigratedAssets)

	// All changes rolled back, legacy untouched
	assert.Equal(t, 0, env.target.activityCount())
	assert.Equal(t, 0, env.target.assetCount())
	assert.Equal(t, 0, env.objects.objectCount())
	assert.False(t, env.legacy.purged)

	entry, getErr := env.logs.Get(context.Background(), userID, DefaultKey)
	require.NoError(t, getErr)
	require.NotNil(t, entry)
	assert.Equal(t, StatusFailed, entry.Status)
	require.NotNil(t, entry.ErrorMessage)
	assert.Equal(t, DryRunMessage, *entry.ErrorMessage)
}

func TestRunEmptyPortfolio(t *testing.T) {
	env := newTestEnv()
	env.revalidator.paths = nil
	userID := uuid.New()

	svc := env.service(testConfig())
	result, err := svc.Run(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, Summary{}, result.Summary)
	require.NotNil(t, result.Revalidated)
	assert.Empty(t, result.Revalidated)

	entry, getErr := env.logs.Get(context.Background(), userID, DefaultKey)
	require.NoError(t, getErr)
	require.NotNil(t, entry)
	assert.Equal(t, StatusCompleted, entry.Status)
}

func TestRunHeaderImageOnly(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	act := makeActivity(userID, "header-bytes")
	env.legacy.activities = []legacy.Activity{act}

	svc := env.service(testConfig())
	result, err := svc.Run(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.MigratedActivities)
	assert.Equal(t, 0, result.Summary.MigratedAssets)

	heroKey := fmt.Sprintf("%s/legacy/%s/%s/header.jpg", testHeroBucket, userID, act.ID)
	env.objects.mu.Lock()
	_, ok := env.objects.objects[heroKey]
	env.objects.mu.Unlock()
	assert.True(t, ok, "hero image missing at deterministic path")
}

func TestRunBoundsAssetConcurrency(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.legacy.activities = []legacy.Activity{
		makeActivity(userID, "", "a", "b", "c", "d", "e"),
	}
	const delay = 30 * time.Millisecond
	env.objects.uploadDelay = delay

	cfg := testConfig()
	cfg.AssetConcurrency = 2

	start := time.Now()
	_, err := env.service(cfg).Run(context.Background(), userID)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.LessOrEqual(t, env.objects.peakInFlight, 2, "more than two uploads in flight")
	// Five uploads two at a time need at least three rounds
	assert.GreaterOrEqual(t, elapsed, 3*delay)
}

func TestStatus(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	svc := env.service(testConfig())

	entry, err := svc.Status(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, entry)

	env.logs.seed(userID, DefaultKey, StatusFailed)
	entry, err = svc.Status(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, StatusFailed, entry.Status)
}
