package artwork

import (
	"github.com/MimeLyc/artwork-curator/internal/media"
)

// DefaultMetadataLanguage is used when neither the item nor the host
// supplies a preferred metadata language.
const DefaultMetadataLanguage = "en"

// LanguageDetector yields the original production language for an item.
type LanguageDetector interface {
	Detect(item media.Item) string
}

// Selector picks at most one image per artwork slot for a media item.
// It is stateless apart from its collaborators and safe for concurrent
// use across items.
type Selector struct {
	detector        LanguageDetector
	defaultLanguage string
}

type SelectorOption func(*Selector)

// WithDefaultMetadataLanguage overrides the service-wide metadata
// language used for items that carry none of their own.
func WithDefaultMetadataLanguage(lang string) SelectorOption {
	return func(s *Selector) {
		if lang != "" {
			s.defaultLanguage = lang
		}
	}
}

func NewSelector(detector LanguageDetector, opts ...SelectorOption) *Selector {
	s := &Selector{
		detector:        detector,
		defaultLanguage: DefaultMetadataLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectImages detects the item's original language once, then runs the
// per-type selection for each requested artwork slot. Output order
// follows types; slots with no candidates are skipped, so the result
// holds at most one image per requested type.
func (s *Selector) SelectImages(item media.Item, candidates []media.Image, types []media.ImageType) []media.Image {
	originalLanguage := s.detector.Detect(item)
	preferredLanguage := s.preferredLanguage(item)

	selected := make([]media.Image, 0, len(types))
	for _, imageType := range types {
		bucket := filterByType(candidates, imageType)
		if len(bucket) == 0 {
			continue
		}
		if best := SelectBestImage(bucket, originalLanguage, preferredLanguage); best != nil {
			selected = append(selected, *best)
		}
	}
	return selected
}

func (s *Selector) preferredLanguage(item media.Item) string {
	if item.PreferredMetadataLanguage != "" {
		return item.PreferredMetadataLanguage
	}
	return s.defaultLanguage
}

func filterByType(candidates []media.Image, imageType media.ImageType) []media.Image {
	ret := make([]media.Image, 0, len(candidates))
	for _, img := range candidates {
		if img.Type == imageType {
			ret = append(ret, img)
		}
	}
	return ret
}
