package langdetect

import (
	"strings"

	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/abadojack/whatlanggo"
)

// Detector infers the original production language of a media item from
// its descriptive metadata. Detection is a best-effort heuristic: it
// always produces a code from the supported set and never returns an
// error; English is the universal fallback.
type Detector struct {
	textFallback bool
}

type Option func(*Detector)

// WithTextFallback enables statistical detection on the original title as
// a last resort before the English fallback. Off by default because it
// can shift results for items whose metadata carries no signal at all.
func WithTextFallback(enabled bool) Option {
	return func(d *Detector) {
		d.textFallback = enabled
	}
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the best-guess ISO 639-1 code for the item's original
// production language. Methods are tried in order and the first one that
// produces a result wins; a season always inherits its parent series'
// result. Any internal fault is swallowed and maps to "en".
func (d *Detector) Detect(item media.Item) (code string) {
	defer func() {
		if r := recover(); r != nil {
			code = English
		}
	}()
	return d.detect(item, 0)
}

// seasons reference their series which could, on malformed input, loop.
const maxParentDepth = 5

func (d *Detector) detect(item media.Item, depth int) string {
	if item.Kind == media.KindSeason && item.Parent != nil && depth < maxParentDepth {
		return d.detect(*item.Parent, depth+1)
	}

	if lang := detectByMetadata(item); lang != "" {
		return lang
	}
	if lang := firstKeywordMatch(locationRules, item.ProductionLocations); lang != "" {
		return lang
	}
	if lang := detectByScript(item.OriginalTitle); lang != "" {
		return lang
	}
	if d.textFallback {
		if lang := detectByText(item.OriginalTitle); lang != "" {
			return lang
		}
	}
	return English
}

// detectByMetadata consults the studio, tag, and genre tables in that
// order, returning on the first hit.
func detectByMetadata(item media.Item) string {
	if lang := firstKeywordMatch(studioRules, item.Studios); lang != "" {
		return lang
	}
	if lang := firstKeywordMatch(tagRules, item.Tags); lang != "" {
		return lang
	}
	return firstKeywordMatch(genreRules, item.Genres)
}

// firstKeywordMatch scans values in their original order; the first value
// containing any rule keyword decides the language.
func firstKeywordMatch(rules []keywordRule, values []string) string {
	for _, value := range values {
		lower := strings.ToLower(value)
		for _, rule := range rules {
			for _, keyword := range rule.keywords {
				if strings.Contains(lower, keyword) {
					return rule.lang
				}
			}
		}
	}
	return ""
}

// detectByText runs whatlanggo over the title and accepts the result only
// when it lands in the supported set.
func detectByText(title string) string {
	if title == "" {
		return ""
	}
	code := whatlanggo.DetectLang(title).Iso6391()
	if supported(code) && code != English {
		return code
	}
	return ""
}
