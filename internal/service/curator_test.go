package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/artwork-curator/internal/artwork"
	"github.com/MimeLyc/artwork-curator/internal/config"
	"github.com/MimeLyc/artwork-curator/internal/jobs"
	"github.com/MimeLyc/artwork-curator/internal/langdetect"
	"github.com/MimeLyc/artwork-curator/internal/library"
	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/MimeLyc/artwork-curator/internal/persistence"
)

const testShowNFO = `<?xml version="1.0" encoding="UTF-8"?>
<tvshow>
  <title>Frieren: Beyond Journey's End</title>
  <originaltitle>葬送のフリーレン</originaltitle>
  <studio>Madhouse</studio>
  <genre>Anime</genre>
  <country>Japan</country>
  <uniqueid type="tmdb">209867</uniqueid>
  <uniqueid type="tvdb">424536</uniqueid>
</tvshow>`

type mockGatherer struct {
	mock.Mock
}

func (m *mockGatherer) Gather(ctx context.Context, item media.Item) []media.Image {
	args := m.Called(ctx, item)
	if images, ok := args.Get(0).([]media.Image); ok {
		return images
	}
	return nil
}

type stubDownloader struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (d *stubDownloader) Download(_ context.Context, url, destPath string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	d.urls = append(d.urls, url)
	return destPath, nil
}

type memoryArtworkStore struct {
	mu         sync.Mutex
	cache      map[string]persistence.CandidateCacheEntry
	selections map[string][]persistence.SelectionRecord
}

func newMemoryArtworkStore() *memoryArtworkStore {
	return &memoryArtworkStore{
		cache:      make(map[string]persistence.CandidateCacheEntry),
		selections: make(map[string][]persistence.SelectionRecord),
	}
}

func (m *memoryArtworkStore) GetCandidateCache(_ context.Context, itemPath string, now time.Time) (persistence.CandidateCacheEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.cache[itemPath]
	if !ok || !entry.ExpiresAt.After(now) {
		return persistence.CandidateCacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (m *memoryArtworkStore) PutCandidateCache(_ context.Context, entry persistence.CandidateCacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[entry.ItemPath] = entry
	return nil
}

func (m *memoryArtworkStore) DeleteExpiredCandidateCache(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for key, entry := range m.cache {
		if !entry.ExpiresAt.After(now) {
			delete(m.cache, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryArtworkStore) RecordSelection(_ context.Context, record persistence.SelectionRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == "" {
		record.ID = record.ItemPath + "|" + record.ImageType
	}
	kept := make([]persistence.SelectionRecord, 0)
	for _, existing := range m.selections[record.ItemPath] {
		if existing.ImageType != record.ImageType {
			kept = append(kept, existing)
		}
	}
	m.selections[record.ItemPath] = append(kept, record)
	return record.ID, nil
}

func (m *memoryArtworkStore) ListSelections(_ context.Context, itemPath string) ([]persistence.SelectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]persistence.SelectionRecord(nil), m.selections[itemPath]...), nil
}

func writeShowLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	showDir := filepath.Join(root, "Frieren")
	require.NoError(t, os.MkdirAll(filepath.Join(showDir, "Season 1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(showDir, "tvshow.nfo"), []byte(testShowNFO), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Downloads"), 0o755))
	return root
}

func testConfig(root string) config.Config {
	return config.Config{
		Providers: config.ProviderConfig{TMDBAPIKey: "test-key"},
		Library:   config.LibraryConfig{ShowDir: root, MetadataLanguage: "en"},
		Refresh:   config.RefreshConfig{CronExpr: "0 3 * * *", Workers: 1, CacheTTLMinutes: 15},
	}
}

func newTestCurator(t *testing.T, root string, gatherer Gatherer, downloader Downloader, store ArtworkStore) *Curator {
	t.Helper()
	cfg := testConfig(root)
	scanner := library.NewScanner(cfg.Library.Sources(), library.WithCacheTTL(0))
	selector := artwork.NewSelector(langdetect.NewDetector())
	return NewCurator(cfg, Deps{
		Scanner:    scanner,
		Gatherer:   gatherer,
		Selector:   selector,
		Downloader: downloader,
		Store:      store,
		Queue:      jobs.NewQueue(1, nil),
		Cron:       cron.New(),
	})
}

func testCandidates() []media.Image {
	return []media.Image{
		{Type: media.ImagePrimary, Language: "en", VoteCount: 50, Width: 1000, Height: 1500, URL: "https://img/poster-en.jpg", Provider: "tmdb"},
		{Type: media.ImagePrimary, Language: "ja", VoteCount: 10, Width: 1000, Height: 1500, URL: "https://img/poster-ja.jpg", Provider: "tmdb"},
		{Type: media.ImageLogo, Language: "en", VoteCount: 3, URL: "https://img/logo-en.png", Provider: "fanart.tv"},
		{Type: media.ImageBackdrop, Language: "", VoteCount: 7, Width: 3840, Height: 2160, URL: "https://img/backdrop.jpg", Provider: "tmdb"},
	}
}

func findShow(t *testing.T, c *Curator) media.Item {
	t.Helper()
	items, _, err := c.ListItems(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		if item.Kind == media.KindSeries {
			return item
		}
	}
	t.Fatal("no series in test library")
	return media.Item{}
}

func TestRefreshItem_SavesBestImagePerType(t *testing.T) {
	root := writeShowLibrary(t)
	gatherer := &mockGatherer{}
	downloader := &stubDownloader{}
	store := newMemoryArtworkStore()
	curator := newTestCurator(t, root, gatherer, downloader, store)

	show := findShow(t, curator)
	gatherer.On("Gather", mock.Anything, mock.Anything).Return(testCandidates()).Once()

	result, err := curator.RefreshItem(context.Background(), show, false)
	require.NoError(t, err)
	assert.Equal(t, 4, result.CandidateCount)
	assert.False(t, result.FromCache)
	require.Len(t, result.Saved, 3)

	byType := make(map[string]persistence.SelectionRecord)
	for _, record := range result.Saved {
		byType[record.ImageType] = record
	}
	// Madhouse marks the show as Japanese, so the ja poster beats the
	// higher voted en one.
	assert.Equal(t, "https://img/poster-ja.jpg", byType["primary"].URL)
	assert.Equal(t, "https://img/logo-en.png", byType["logo"].URL)
	assert.Equal(t, "https://img/backdrop.jpg", byType["backdrop"].URL)
	assert.True(t, strings.HasSuffix(byType["primary"].FilePath, "poster.jpg"))
	assert.True(t, strings.HasSuffix(byType["backdrop"].FilePath, "fanart.jpg"))

	stored, err := curator.Selections(context.Background(), show.Path)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	gatherer.AssertExpectations(t)
}

func TestRefreshItem_UsesCandidateCache(t *testing.T) {
	root := writeShowLibrary(t)
	gatherer := &mockGatherer{}
	downloader := &stubDownloader{}
	store := newMemoryArtworkStore()
	curator := newTestCurator(t, root, gatherer, downloader, store)

	show := findShow(t, curator)
	require.NoError(t, store.PutCandidateCache(context.Background(), persistence.CandidateCacheEntry{
		ItemPath:  show.Path,
		Images:    testCandidates(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	result, err := curator.RefreshItem(context.Background(), show, false)
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	gatherer.AssertNotCalled(t, "Gather", mock.Anything, mock.Anything)

	// Force bypasses the cache.
	gatherer.On("Gather", mock.Anything, mock.Anything).Return(testCandidates()).Once()
	result, err = curator.RefreshItem(context.Background(), show, true)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	gatherer.AssertExpectations(t)
}

func TestRefreshItem_NoCandidates(t *testing.T) {
	root := writeShowLibrary(t)
	gatherer := &mockGatherer{}
	downloader := &stubDownloader{}
	curator := newTestCurator(t, root, gatherer, downloader, newMemoryArtworkStore())

	show := findShow(t, curator)
	gatherer.On("Gather", mock.Anything, mock.Anything).Return([]media.Image(nil))

	result, err := curator.RefreshItem(context.Background(), show, false)
	require.NoError(t, err)
	assert.Zero(t, result.CandidateCount)
	assert.Empty(t, result.Saved)
}

func TestRefreshItem_AllDownloadsFail(t *testing.T) {
	root := writeShowLibrary(t)
	gatherer := &mockGatherer{}
	downloader := &stubDownloader{err: errors.New("cdn down")}
	curator := newTestCurator(t, root, gatherer, downloader, newMemoryArtworkStore())

	show := findShow(t, curator)
	gatherer.On("Gather", mock.Anything, mock.Anything).Return(testCandidates())

	_, err := curator.RefreshItem(context.Background(), show, false)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrSelection))
}

func TestRefreshLibrary_QueuesTypedItems(t *testing.T) {
	root := writeShowLibrary(t)
	gatherer := &mockGatherer{}
	curator := newTestCurator(t, root, gatherer, &stubDownloader{}, newMemoryArtworkStore())

	// Series + one season; the Downloads directory is untyped and skipped.
	queued, err := curator.RefreshLibrary(context.Background(), "api", false)
	require.NoError(t, err)
	assert.Equal(t, 2, queued)

	// Re-queuing collapses onto the pending jobs.
	queued, err = curator.RefreshLibrary(context.Background(), "api", false)
	require.NoError(t, err)
	assert.Zero(t, queued)
}

func TestExecuteJob_RefreshesItem(t *testing.T) {
	root := writeShowLibrary(t)
	gatherer := &mockGatherer{}
	store := newMemoryArtworkStore()
	curator := newTestCurator(t, root, gatherer, &stubDownloader{}, store)

	show := findShow(t, curator)
	gatherer.On("Gather", mock.Anything, mock.Anything).Return(testCandidates())

	job := &jobs.ArtworkJob{
		ID:      "job-a",
		Payload: jobs.JobPayload{ItemPath: show.Path},
	}
	require.NoError(t, curator.ExecuteJob(context.Background(), job))

	stored, err := curator.Selections(context.Background(), show.Path)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestExecuteJob_ItemGone(t *testing.T) {
	root := writeShowLibrary(t)
	curator := newTestCurator(t, root, &mockGatherer{}, &stubDownloader{}, newMemoryArtworkStore())

	err := curator.ExecuteJob(context.Background(), &jobs.ArtworkJob{
		ID:      "job-a",
		Payload: jobs.JobPayload{ItemPath: filepath.Join(root, "Removed Show")},
	})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrItemNotFound))
}

func TestApplySettings_ReschedulesCron(t *testing.T) {
	root := writeShowLibrary(t)
	curator := newTestCurator(t, root, &mockGatherer{}, &stubDownloader{}, newMemoryArtworkStore())

	require.NoError(t, curator.Schedule(context.Background()))

	status, err := curator.Status()
	require.NoError(t, err)
	assert.Equal(t, "0 3 * * *", status.CronExpr)
	assert.True(t, status.Next.After(status.Last))

	require.NoError(t, curator.ApplySettings(context.Background(), config.RuntimeSettings{
		TMDBAPIKey:       "test-key",
		CronExpr:         "*/10 * * * *",
		MetadataLanguage: "en",
	}))

	status, err = curator.Status()
	require.NoError(t, err)
	assert.Equal(t, "*/10 * * * *", status.CronExpr)

	err = curator.ApplySettings(context.Background(), config.RuntimeSettings{CronExpr: "bad cron"})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrValidation))
}
