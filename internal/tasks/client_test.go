package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilyev/shelfserve/internal/entities"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

type fakeBookStore struct {
	uuids   []string
	covered []entities.Book
	err     error
}

func (f *fakeBookStore) GetBookUUIDs() ([]string, error) {
	return f.uuids, f.err
}

func (f *fakeBookStore) GetBooksWithCovers() ([]entities.Book, error) {
	return f.covered, f.err
}

type fakeCoverCache struct {
	cleanedWith []string
	removed     int
	fetched     []string
	fetchErr    map[string]error
}

func (f *fakeCoverCache) CleanupExcept(keep []string) (int, error) {
	f.cleanedWith = keep
	return f.removed, nil
}

func (f *fakeCoverCache) GetCover(bookUUID, coverURL string) (string, error) {
	if err, ok := f.fetchErr[bookUUID]; ok {
		return "", err
	}
	f.fetched = append(f.fetched, bookUUID)
	return "/cache/" + bookUUID + ".jpg", nil
}

type fakeStatusRecorder struct {
	status  string
	message string
}

func (f *fakeStatusRecorder) SetCoverCleanupStatus(status, message string) error {
	f.status = status
	f.message = message
	return nil
}

func TestCleanupCoverCacheProcessor(t *testing.T) {
	books := &fakeBookStore{uuids: []string{"uuid-1", "uuid-2"}}
	cache := &fakeCoverCache{removed: 3}

	recorder := &fakeStatusRecorder{}
	processor := CleanupCoverCacheProcessor(books, cache, recorder)
	err := processor(context.Background(), CleanupCoverCacheTask{TriggeredBy: "manual"})

	require.NoError(t, err)
	assert.Equal(t, []string{"uuid-1", "uuid-2"}, cache.cleanedWith)
	assert.Equal(t, "success", recorder.status)
}

func TestCleanupCoverCacheProcessor_ListError(t *testing.T) {
	books := &fakeBookStore{err: errors.New("db unavailable")}
	cache := &fakeCoverCache{}

	recorder := &fakeStatusRecorder{}
	processor := CleanupCoverCacheProcessor(books, cache, recorder)
	err := processor(context.Background(), CleanupCoverCacheTask{})

	assert.Error(t, err)
	assert.Nil(t, cache.cleanedWith)
	assert.Equal(t, "failed", recorder.status)
}

func TestWarmCoverCacheProcessor(t *testing.T) {
	books := &fakeBookStore{covered: []entities.Book{
		{UUID: "uuid-1", CoverURL: "https://covers.example.com/1.jpg"},
		{UUID: "uuid-2", CoverURL: ""}, // no URL, skipped
		{UUID: "uuid-3", CoverURL: "https://covers.example.com/3.jpg"},
	}}
	cache := &fakeCoverCache{}

	processor := WarmCoverCacheProcessor(books, cache)
	err := processor(context.Background(), WarmCoverCacheTask{})

	require.NoError(t, err)
	assert.Equal(t, []string{"uuid-1", "uuid-3"}, cache.fetched)
}

func TestWarmCoverCacheProcessor_SingleBook(t *testing.T) {
	books := &fakeBookStore{covered: []entities.Book{
		{UUID: "uuid-1", CoverURL: "https://covers.example.com/1.jpg"},
		{UUID: "uuid-2", CoverURL: "https://covers.example.com/2.jpg"},
	}}
	cache := &fakeCoverCache{}

	processor := WarmCoverCacheProcessor(books, cache)
	err := processor(context.Background(), WarmCoverCacheTask{BookUUID: "uuid-2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"uuid-2"}, cache.fetched)
}

func TestWarmCoverCacheProcessor_SkipsFailedDownloads(t *testing.T) {
	books := &fakeBookStore{covered: []entities.Book{
		{UUID: "uuid-1", CoverURL: "https://covers.example.com/1.jpg"},
		{UUID: "uuid-2", CoverURL: "https://covers.example.com/2.jpg"},
	}}
	cache := &fakeCoverCache{fetchErr: map[string]error{
		"uuid-1": errors.New("connection refused"),
	}}

	processor := WarmCoverCacheProcessor(books, cache)
	err := processor(context.Background(), WarmCoverCacheTask{})

	require.NoError(t, err, "one failed download should not fail the run")
	assert.Equal(t, []string{"uuid-2"}, cache.fetched)
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task CleanupCoverCacheTask) error {
		executed <- task.TriggeredBy
		return nil
	})
	client.Register(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(CleanupCoverCacheTask{TriggeredBy: "manual"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "manual", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestTaskQueueConfigs(t *testing.T) {
	cleanup := CleanupCoverCacheTask{}.Config()
	assert.Equal(t, "cleanup_cover_cache", cleanup.Name)
	assert.Equal(t, 3, cleanup.MaxAttempts)
	assert.NotNil(t, cleanup.Retention)

	warm := WarmCoverCacheTask{}.Config()
	assert.Equal(t, "warm_cover_cache", warm.Name)
	assert.Equal(t, 2, warm.MaxAttempts)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
