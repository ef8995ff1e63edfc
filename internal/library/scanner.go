package library

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/MimeLyc/artwork-curator/pkg/log"
)

type scannerOptions struct {
	cacheTTL time.Duration
}

type Option func(*scannerOptions)

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *scannerOptions) {
		o.cacheTTL = ttl
	}
}

type scanCache struct {
	version uint64
	scanned time.Time
	items   []media.Item
	sources []Source
}

// Scanner builds media item views from NFO files under the configured
// library roots. Scans are cached for a short TTL and invalidated on
// config changes, matching how often artwork refreshes actually run.
type Scanner struct {
	mu            sync.RWMutex
	sources       []SourceConfig
	cacheTTL      time.Duration
	cache         *scanCache
	configVersion uint64
}

func NewScanner(sources []SourceConfig, opts ...Option) *Scanner {
	options := scannerOptions{
		cacheTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Scanner{
		sources:  sources,
		cacheTTL: options.cacheTTL,
	}
}

// UpdateSources swaps the configured roots and drops the cache.
func (s *Scanner) UpdateSources(sources []SourceConfig) {
	s.mu.Lock()
	s.sources = sources
	s.cache = nil
	s.configVersion++
	s.mu.Unlock()
}

func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.configVersion++
	s.mu.Unlock()
}

var seasonDirPattern = regexp.MustCompile(`(?i)^(season[ ._-]?\d+|specials)$`)

// Scan walks every configured source and returns the item views found.
// Series items precede their seasons; each season's Parent points at a
// private copy of the series view.
func (s *Scanner) Scan(ctx context.Context) ([]media.Item, []Source, error) {
	s.mu.RLock()
	version := s.configVersion
	cacheTTL := s.cacheTTL
	if s.cache != nil && s.cache.version == version && (cacheTTL <= 0 || time.Since(s.cache.scanned) < cacheTTL) {
		items := cloneItems(s.cache.items)
		sources := append([]Source(nil), s.cache.sources...)
		s.mu.RUnlock()
		return items, sources, nil
	}
	sources := append([]SourceConfig(nil), s.sources...)
	s.mu.RUnlock()

	items := make([]media.Item, 0)
	summaries := make([]Source, 0, len(sources))

	for _, sourceCfg := range sources {
		if sourceCfg.Path == "" {
			continue
		}
		if _, err := os.Stat(sourceCfg.Path); err != nil {
			if os.IsNotExist(err) {
				log.Warn("library source %q missing, skipping: %s", sourceCfg.ID, sourceCfg.Path)
				continue
			}
			return nil, nil, err
		}

		found, err := s.scanSource(ctx, sourceCfg)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, found...)
		summaries = append(summaries, Source{
			ID:        sourceCfg.ID,
			Name:      sourceCfg.Name,
			Path:      sourceCfg.Path,
			ItemCount: len(found),
		})
	}

	s.mu.Lock()
	if s.configVersion == version {
		s.cache = &scanCache{
			version: version,
			scanned: time.Now(),
			items:   cloneItems(items),
			sources: append([]Source(nil), summaries...),
		}
	}
	s.mu.Unlock()

	return items, summaries, nil
}

func (s *Scanner) scanSource(ctx context.Context, cfg SourceConfig) ([]media.Item, error) {
	entries, err := os.ReadDir(cfg.Path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	ret := make([]media.Item, 0)
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(cfg.Path, entry.Name())
		found, err := s.scanItemDir(cfg, dir, entry.Name())
		if err != nil {
			log.Warn("skipping %s: %v", dir, err)
			continue
		}
		ret = append(ret, found...)
	}
	return ret, nil
}

// scanItemDir classifies one top-level directory: tvshow.nfo makes it a
// series (with season subdirectories), movie.nfo a movie, anything else
// an untyped item.
func (s *Scanner) scanItemDir(cfg SourceConfig, dir, name string) ([]media.Item, error) {
	if nfoPath := filepath.Join(dir, "tvshow.nfo"); fileExists(nfoPath) {
		doc, err := readNFO(nfoPath)
		if err != nil {
			return nil, err
		}
		series := itemFromNFO(doc, media.KindSeries, name, dir, nfoPath, cfg.MetadataLanguage)
		return append([]media.Item{series}, s.scanSeasons(cfg, dir, series)...), nil
	}

	if nfoPath := filepath.Join(dir, "movie.nfo"); fileExists(nfoPath) {
		doc, err := readNFO(nfoPath)
		if err != nil {
			return nil, err
		}
		return []media.Item{itemFromNFO(doc, media.KindMovie, name, dir, nfoPath, cfg.MetadataLanguage)}, nil
	}

	return []media.Item{{
		Name:                      name,
		Kind:                      media.KindOther,
		Path:                      dir,
		PreferredMetadataLanguage: cfg.MetadataLanguage,
	}}, nil
}

func (s *Scanner) scanSeasons(cfg SourceConfig, seriesDir string, series media.Item) []media.Item {
	entries, err := os.ReadDir(seriesDir)
	if err != nil {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	ret := make([]media.Item, 0)
	for _, entry := range entries {
		if !entry.IsDir() || !seasonDirPattern.MatchString(entry.Name()) {
			continue
		}

		dir := filepath.Join(seriesDir, entry.Name())
		season := media.Item{
			Name:                      entry.Name(),
			Kind:                      media.KindSeason,
			Path:                      dir,
			PreferredMetadataLanguage: series.PreferredMetadataLanguage,
			IDs:                       series.IDs,
		}
		if nfoPath := filepath.Join(dir, "season.nfo"); fileExists(nfoPath) {
			if doc, err := readNFO(nfoPath); err == nil {
				season = itemFromNFO(doc, media.KindSeason, entry.Name(), dir, nfoPath, cfg.MetadataLanguage)
				if season.IDs == (media.ExternalIDs{}) {
					season.IDs = series.IDs
				}
			}
		}

		parent := series
		season.Parent = &parent
		ret = append(ret, season)
	}
	return ret
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func cloneItems(items []media.Item) []media.Item {
	ret := make([]media.Item, len(items))
	copy(ret, items)
	for i := range ret {
		if ret[i].Parent != nil {
			parent := *ret[i].Parent
			ret[i].Parent = &parent
		}
	}
	return ret
}
