package persistence

import (
	"time"

	"github.com/MimeLyc/artwork-curator/internal/media"
)

// CandidateCacheEntry stores the raw provider responses for one item so
// repeated selections within the TTL skip the network round trips.
type CandidateCacheEntry struct {
	ItemPath  string
	Images    []media.Image
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// SelectionRecord is the audit trail of one winning image per item and
// image type.
type SelectionRecord struct {
	ID         string
	ItemPath   string
	ImageType  string
	Language   string
	URL        string
	Provider   string
	VoteCount  int
	Width      int
	Height     int
	FilePath   string
	SelectedAt time.Time
}
