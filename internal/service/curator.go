package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/artwork-curator/internal/artwork"
	"github.com/MimeLyc/artwork-curator/internal/config"
	"github.com/MimeLyc/artwork-curator/internal/jobs"
	"github.com/MimeLyc/artwork-curator/internal/library"
	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/MimeLyc/artwork-curator/internal/persistence"
	"github.com/MimeLyc/artwork-curator/pkg/icron"
	"github.com/MimeLyc/artwork-curator/pkg/log"
)

// Gatherer collects artwork candidates from the configured providers.
type Gatherer interface {
	Gather(ctx context.Context, item media.Item) []media.Image
}

// Downloader stores a remote image next to the media it belongs to.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) (string, error)
}

// ArtworkStore is the persistence surface the curator needs: the
// candidate cache and the selection history.
type ArtworkStore interface {
	GetCandidateCache(ctx context.Context, itemPath string, now time.Time) (persistence.CandidateCacheEntry, bool, error)
	PutCandidateCache(ctx context.Context, entry persistence.CandidateCacheEntry) error
	DeleteExpiredCandidateCache(ctx context.Context, now time.Time) (int64, error)
	RecordSelection(ctx context.Context, record persistence.SelectionRecord) (string, error)
	ListSelections(ctx context.Context, itemPath string) ([]persistence.SelectionRecord, error)
}

// artworkBaseNames maps image types to the artwork filenames media
// servers pick up from the item directory.
var artworkBaseNames = map[media.ImageType]string{
	media.ImagePrimary:  "poster",
	media.ImageLogo:     "logo",
	media.ImageThumb:    "landscape",
	media.ImageBackdrop: "fanart",
}

type Deps struct {
	Scanner    *library.Scanner
	Gatherer   Gatherer
	Selector   *artwork.Selector
	Downloader Downloader
	Store      ArtworkStore
	Queue      *jobs.Queue
	Cron       *cron.Cron
}

// Curator ties the scanner, the providers and the selection engine
// together: it refreshes artwork for single items and schedules the
// library-wide sweep.
type Curator struct {
	scanner    *library.Scanner
	gatherer   Gatherer
	selector   *artwork.Selector
	downloader Downloader
	store      ArtworkStore
	queue      *jobs.Queue
	cron       *cron.Cron
	cacheTTL   time.Duration

	mu       sync.Mutex
	cronExpr string
	entryID  cron.EntryID
}

func NewCurator(cfg config.Config, deps Deps) *Curator {
	cacheTTL := time.Duration(cfg.Refresh.CacheTTLMinutes) * time.Minute
	return &Curator{
		scanner:    deps.Scanner,
		gatherer:   deps.Gatherer,
		selector:   deps.Selector,
		downloader: deps.Downloader,
		store:      deps.Store,
		queue:      deps.Queue,
		cron:       deps.Cron,
		cacheTTL:   cacheTTL,
		cronExpr:   cfg.Refresh.CronExpr,
	}
}

// ListItems exposes the current library view.
func (c *Curator) ListItems(ctx context.Context) ([]media.Item, []library.Source, error) {
	return c.scanner.Scan(ctx)
}

// InvalidateLibrary drops the scanner cache so the next listing rescans
// the sources.
func (c *Curator) InvalidateLibrary() {
	c.scanner.Invalidate()
}

// Select runs the selection engine over caller-supplied candidates
// without touching providers or disk.
func (c *Curator) Select(item media.Item, candidates []media.Image, types []media.ImageType) []media.Image {
	return c.selector.SelectImages(item, candidates, types)
}

// RefreshItem gathers candidates, selects the best image per type and
// stores the winners in the item directory.
func (c *Curator) RefreshItem(ctx context.Context, item media.Item, force bool) (RefreshResult, error) {
	result := RefreshResult{ItemPath: item.Path}

	candidates, fromCache, err := c.candidates(ctx, item, force)
	if err != nil {
		return result, err
	}
	result.CandidateCount = len(candidates)
	result.FromCache = fromCache

	if len(candidates) == 0 {
		log.Warn("No artwork candidates for %s", item.Path)
		return result, nil
	}

	selected := c.selector.SelectImages(item, candidates, media.ImageTypes())
	result.Saved = make([]persistence.SelectionRecord, 0, len(selected))

	for _, img := range selected {
		baseName, ok := artworkBaseNames[img.Type]
		if !ok {
			continue
		}
		destPath := filepath.Join(item.Path, baseName+".jpg")
		finalPath, err := c.downloader.Download(ctx, img.URL, destPath)
		if err != nil {
			log.Warn("Failed to download %s artwork for %s: %v", img.Type, item.Path, err)
			continue
		}

		record := persistence.SelectionRecord{
			ItemPath:   item.Path,
			ImageType:  string(img.Type),
			Language:   img.Language,
			URL:        img.URL,
			Provider:   img.Provider,
			VoteCount:  img.VoteCount,
			Width:      img.Width,
			Height:     img.Height,
			FilePath:   finalPath,
			SelectedAt: time.Now().UTC(),
		}
		if c.store != nil {
			if record.ID, err = c.store.RecordSelection(ctx, record); err != nil {
				log.Error("Failed to record selection for %s: %v", item.Path, err)
			}
		}
		result.Saved = append(result.Saved, record)
	}

	if len(result.Saved) == 0 {
		return result, NewError(ErrSelection, fmt.Sprintf("no artwork saved for %s", item.Path))
	}
	return result, nil
}

// candidates returns cached provider responses when they are still
// fresh, otherwise queries every provider and refills the cache.
func (c *Curator) candidates(ctx context.Context, item media.Item, force bool) ([]media.Image, bool, error) {
	now := time.Now().UTC()
	if !force && c.store != nil {
		entry, ok, err := c.store.GetCandidateCache(ctx, item.Path, now)
		if err != nil {
			log.Error("Failed to read candidate cache for %s: %v", item.Path, err)
		} else if ok {
			return entry.Images, true, nil
		}
	}

	images := c.gatherer.Gather(ctx, item)
	if c.store != nil && len(images) > 0 {
		entry := persistence.CandidateCacheEntry{
			ItemPath:  item.Path,
			Images:    images,
			ExpiresAt: now.Add(c.cacheTTL),
			UpdatedAt: now,
		}
		if err := c.store.PutCandidateCache(ctx, entry); err != nil {
			log.Error("Failed to cache candidates for %s: %v", item.Path, err)
		}
	}
	return images, false, nil
}

// EnqueueRefresh queues a background refresh for one item. Repeated
// requests while a job is pending collapse onto it.
func (c *Curator) EnqueueRefresh(item media.Item, source string, force bool) (*jobs.ArtworkJob, bool) {
	return c.queue.Enqueue(jobs.EnqueueRequest{
		Source:    source,
		DedupeKey: "refresh:" + item.Path,
		Payload: jobs.JobPayload{
			ItemPath: item.Path,
			NFOPath:  item.NFOPath,
			Force:    force,
		},
	})
}

// RefreshLibrary enqueues a refresh job for every typed item in the
// library and returns how many jobs were newly queued.
func (c *Curator) RefreshLibrary(ctx context.Context, source string, force bool) (int, error) {
	items, _, err := c.scanner.Scan(ctx)
	if err != nil {
		return 0, WrapError(err, ErrFileRead, "library scan failed")
	}

	queued := 0
	for _, item := range items {
		if item.Kind == media.KindOther {
			continue
		}
		if _, created := c.EnqueueRefresh(item, source, force); created {
			queued++
		}
	}
	return queued, nil
}

// ExecuteJob is the queue executor: it resolves the job payload back to
// a library item and refreshes it.
func (c *Curator) ExecuteJob(ctx context.Context, job *jobs.ArtworkJob) error {
	item, ok, err := c.findItemByPath(ctx, job.Payload.ItemPath)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(ErrItemNotFound, fmt.Sprintf("item %s no longer in library", job.Payload.ItemPath))
	}
	_, err = c.RefreshItem(ctx, item, job.Payload.Force)
	return err
}

func (c *Curator) findItemByPath(ctx context.Context, path string) (media.Item, bool, error) {
	items, _, err := c.scanner.Scan(ctx)
	if err != nil {
		return media.Item{}, false, WrapError(err, ErrFileRead, "library scan failed")
	}
	for _, item := range items {
		if item.Path == path {
			return item, true, nil
		}
	}
	return media.Item{}, false, nil
}

var singleflightGroup singleflight.Group

// Schedule registers the library-wide refresh on the cron runner.
// Overlapping triggers collapse into one run.
func (c *Curator) Schedule(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scheduleLocked(ctx)
}

func (c *Curator) scheduleLocked(ctx context.Context) error {
	runFunc := func() {
		_, _, _ = singleflightGroup.Do("refresh-library", func() (any, error) {
			queued, err := c.RefreshLibrary(ctx, "cron", false)
			if err != nil {
				log.Error("Scheduled library refresh failed: %v", err)
				return nil, err
			}
			log.Info("Scheduled library refresh queued %d jobs", queued)

			if c.store != nil {
				if removed, err := c.store.DeleteExpiredCandidateCache(ctx, time.Now().UTC()); err != nil {
					log.Error("Failed to purge candidate cache: %v", err)
				} else if removed > 0 {
					log.Info("Purged %d expired candidate cache entries", removed)
				}
			}
			return nil, nil
		})
	}

	entryID, err := c.cron.AddFunc(c.cronExpr, runFunc)
	if err != nil {
		return WrapError(err, ErrConfig, "invalid refresh schedule")
	}
	c.entryID = entryID
	return nil
}

// ApplySettings applies runtime settings that affect the curator: a new
// cron expression replaces the scheduled entry in place.
func (c *Curator) ApplySettings(ctx context.Context, settings config.RuntimeSettings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if settings.CronExpr == c.cronExpr {
		return nil
	}
	if _, err := cron.ParseStandard(settings.CronExpr); err != nil {
		return WrapError(err, ErrValidation, "invalid cron expression")
	}

	c.cron.Remove(c.entryID)
	c.cronExpr = settings.CronExpr
	c.scanner.Invalidate()
	return c.scheduleLocked(ctx)
}

// Status reports the current schedule relative to now.
func (c *Curator) Status() (ScheduleStatus, error) {
	c.mu.Lock()
	expr := c.cronExpr
	c.mu.Unlock()

	info, err := icron.GetTriggerInfo(expr, time.Now())
	if err != nil {
		return ScheduleStatus{}, WrapError(err, ErrConfig, "invalid refresh schedule")
	}
	return ScheduleStatus{
		CronExpr: expr,
		Last:     info.Last,
		Next:     info.Next,
	}, nil
}

// Selections returns the stored selection history for one item.
func (c *Curator) Selections(ctx context.Context, itemPath string) ([]persistence.SelectionRecord, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.ListSelections(ctx, itemPath)
}
