package artwork

import (
	"sort"
	"strings"

	"github.com/MimeLyc/artwork-curator/internal/media"
)

// Priority tiers for the language component of the ranking key. Original
// language beats the metadata language, which beats English or untagged
// images, which beat everything else.
const (
	tierOriginalLanguage  = 4
	tierPreferredLanguage = 3
	tierNeutral           = 2
	tierOther             = 1
)

// SelectBestImage returns the highest-priority candidate, or nil for an
// empty list. Ranking is a stable descending sort on
// (language tier, vote count, pixel area), so input order is the final
// tie-break and repeated calls pick the same image. The input slice is
// never modified. Any internal fault maps to "no selection".
func SelectBestImage(images []media.Image, originalLanguage, preferredLanguage string) (best *media.Image) {
	defer func() {
		if r := recover(); r != nil {
			best = nil
		}
	}()

	if len(images) == 0 {
		return nil
	}

	ranked := make([]media.Image, len(images))
	copy(ranked, images)

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := languageTier(ranked[i].Language, originalLanguage, preferredLanguage),
			languageTier(ranked[j].Language, originalLanguage, preferredLanguage)
		if ti != tj {
			return ti > tj
		}
		if ranked[i].VoteCount != ranked[j].VoteCount {
			return ranked[i].VoteCount > ranked[j].VoteCount
		}
		return pixelArea(ranked[i]) > pixelArea(ranked[j])
	})

	top := ranked[0]
	return &top
}

func languageTier(imageLanguage, originalLanguage, preferredLanguage string) int {
	lang := strings.ToLower(strings.TrimSpace(imageLanguage))
	switch {
	case lang != "" && lang == strings.ToLower(originalLanguage):
		return tierOriginalLanguage
	case lang != "" && lang == strings.ToLower(preferredLanguage):
		return tierPreferredLanguage
	case lang == "" || lang == "en" || lang == "english":
		return tierNeutral
	default:
		return tierOther
	}
}

// pixelArea widens before multiplying so oversized dimensions cannot
// overflow the comparison.
func pixelArea(img media.Image) int64 {
	return int64(img.Width) * int64(img.Height)
}
