package migration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/folionet/casfolio/backend/internal/activity"
	"github.com/folionet/casfolio/backend/internal/legacy"
	"github.com/google/uuid"
)

// fakeLegacyStore serves canned legacy rows from memory
type fakeLegacyStore struct {
	activities    []legacy.Activity
	customization *legacy.Customization

	listErr  error
	purgeErr error
	purged   bool
}

func (f *fakeLegacyStore) ListActivities(ctx context.Context, userID uuid.UUID) ([]legacy.Activity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.activities, nil
}

func (f *fakeLegacyStore) GetCustomization(ctx context.Context, userID uuid.UUID) (*legacy.Customization, error) {
	return f.customization, nil
}

func (f *fakeLegacyStore) PurgeUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purged = true
	return len(f.activities), nil
}

// fakeTargetStore records new-schema writes and deletes in memory. Asset
// inserts happen concurrently, so all state is mutex-guarded.
type fakeTargetStore struct {
	mu         sync.Mutex
	activities map[uuid.UUID]activity.Activity
	assets     map[uuid.UUID]activity.Asset

	insertAssetErrAfter int // fail the Nth asset insert (1-based), 0 disables
	assetInserts        int

	deletedAssets     []uuid.UUID
	deletedActivities []uuid.UUID
}

func newFakeTargetStore() *fakeTargetStore {
	return &fakeTargetStore{
		activities: make(map[uuid.UUID]activity.Activity),
		assets:     make(map[uuid.UUID]activity.Asset),
	}
}

func (f *fakeTargetStore) InsertActivity(ctx context.Context, row *activity.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.activities[row.ID] = *row
	return nil
}

func (f *fakeTargetStore) InsertAsset(ctx context.Context, row *activity.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assetInserts++
	if f.insertAssetErrAfter > 0 && f.assetInserts >= f.insertAssetErrAfter {
		return fmt.Errorf("simulated insert failure")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.assets[row.ID] = *row
	return nil
}

func (f *fakeTargetStore) DeleteAssets(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.assets, id)
		f.deletedAssets = append(f.deletedAssets, id)
	}
	return nil
}

func (f *fakeTargetStore) DeleteActivities(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.activities, id)
		f.deletedActivities = append(f.deletedActivities, id)
	}
	return nil
}

func (f *fakeTargetStore) activityCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.activities)
}

func (f *fakeTargetStore) assetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assets)
}

// fakeProfileStore holds one profile row with a replaceable settings value.
// settings == nil with exists == true models a SQL NULL.
type fakeProfileStore struct {
	mu       sync.Mutex
	exists   bool
	settings []byte
	writes   [][]byte

	replaceErr error
}

func (f *fakeProfileStore) GetSettings(ctx context.Context, userID uuid.UUID) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists {
		return nil, false, nil
	}
	return f.settings, true, nil
}

func (f *fakeProfileStore) ReplaceSettings(ctx context.Context, userID uuid.UUID, settings []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.settings = settings
	f.writes = append(f.writes, settings)
	return nil
}

// fakeObjectStore keeps uploaded objects in memory, optionally failing some
// uploads and tracking the peak number of concurrent uploads
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte // bucket/path -> data

	uploadDelay     time.Duration
	failUploadAt    int // fail the Nth upload (1-based) every time it is tried
	failUploadTimes int // how many times that upload fails before succeeding
	uploads         int
	failures        int

	inFlight      int
	peakInFlight  int
	removedPaths  []string
	missingBucket string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) UploadObject(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	f.mu.Lock()
	f.uploads++
	n := f.uploads
	f.inFlight++
	if f.inFlight > f.peakInFlight {
		f.peakInFlight = f.inFlight
	}
	shouldFail := f.failUploadAt > 0 && n >= f.failUploadAt &&
		(f.failUploadTimes == 0 || f.failures < f.failUploadTimes)
	if shouldFail {
		f.failures++
	}
	delay := f.uploadDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	if !shouldFail {
		f.objects[bucket+"/"+path] = data
	}
	f.mu.Unlock()

	if shouldFail {
		return fmt.Errorf("simulated upload failure")
	}
	return nil
}

func (f *fakeObjectStore) RemoveObjects(ctx context.Context, bucket string, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, path := range paths {
		delete(f.objects, bucket+"/"+path)
		f.removedPaths = append(f.removedPaths, bucket+"/"+path)
	}
	return nil
}

func (f *fakeObjectStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return bucket != f.missingBucket, nil
}

func (f *fakeObjectStore) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	return "https://example.test/" + bucket + "/" + path, nil
}

func (f *fakeObjectStore) Close() error { return nil }

func (f *fakeObjectStore) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeLogStore implements the migration log in memory using the same
// transition helpers as the real store
type fakeLogStore struct {
	mu      sync.Mutex
	entries map[string]*LogEntry

	markRunningErr error
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{entries: make(map[string]*LogEntry)}
}

func logKey(userID uuid.UUID, key string) string {
	return userID.String() + "/" + key
}

func (f *fakeLogStore) Get(ctx context.Context, userID uuid.UUID, key string) (*LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[logKey(userID, key)]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeLogStore) get(userID uuid.UUID, key string) *LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[logKey(userID, key)]
	if !ok {
		entry = &LogEntry{ID: uuid.New(), UserID: userID, MigrationKey: key}
		f.entries[logKey(userID, key)] = entry
	}
	return entry
}

func (f *fakeLogStore) MarkRunning(ctx context.Context, userID uuid.UUID, key string) (*LogEntry, error) {
	if f.markRunningErr != nil {
		return nil, f.markRunningErr
	}
	entry := f.get(userID, key)
	f.mu.Lock()
	defer f.mu.Unlock()
	applyRunning(entry, time.Now())
	copied := *entry
	return &copied, nil
}

func (f *fakeLogStore) MarkCompleted(ctx context.Context, userID uuid.UUID, key string) error {
	entry := f.get(userID, key)
	f.mu.Lock()
	defer f.mu.Unlock()
	applyCompleted(entry, time.Now())
	return nil
}

func (f *fakeLogStore) MarkFailed(ctx context.Context, userID uuid.UUID, key, message string) error {
	entry := f.get(userID, key)
	f.mu.Lock()
	defer f.mu.Unlock()
	applyFailed(entry, message, time.Now())
	return nil
}

// seed places an existing entry, for already-completed and already-running
// scenarios
func (f *fakeLogStore) seed(userID uuid.UUID, key string, status Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.entries[logKey(userID, key)] = &LogEntry{
		ID:           uuid.New(),
		UserID:       userID,
		MigrationKey: key,
		Status:       status,
		StartedAt:    &now,
		UpdatedAt:    now,
	}
}

// fakeProber answers table probes, optionally failing one table
type fakeProber struct {
	failTable string
}

func (f *fakeProber) ProbeTable(ctx context.Context, table, column string) error {
	if table == f.failTable {
		return fmt.Errorf("relation %q does not exist", table)
	}
	return nil
}

// fakeRevalidator records the revalidation call
type fakeRevalidator struct {
	paths  []string
	err    error
	called bool
}

func (f *fakeRevalidator) Revalidate(ctx context.Context, userID uuid.UUID) ([]string, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.paths, nil
}
