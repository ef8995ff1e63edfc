package artwork

import (
	"testing"

	"github.com/MimeLyc/artwork-curator/internal/langdetect"
	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector(opts ...SelectorOption) *Selector {
	return NewSelector(langdetect.NewDetector(), opts...)
}

func TestSelectImages_OnePerType(t *testing.T) {
	s := newTestSelector()

	item := media.Item{
		Name:    "Frieren",
		Kind:    media.KindSeries,
		Studios: []string{"Madhouse"},
	}
	candidates := []media.Image{
		{Type: media.ImagePrimary, Language: "en", VoteCount: 40, URL: "poster-en"},
		{Type: media.ImagePrimary, Language: "ja", VoteCount: 3, URL: "poster-ja"},
		{Type: media.ImageBackdrop, Language: "", VoteCount: 12, URL: "backdrop"},
		{Type: media.ImageLogo, Language: "ja", URL: "logo-ja"},
		{Type: media.ImageLogo, Language: "de", VoteCount: 9, URL: "logo-de"},
	}

	selected := s.SelectImages(item, candidates, media.ImageTypes())

	require.Len(t, selected, 3)
	assert.Equal(t, "poster-ja", selected[0].URL)
	assert.Equal(t, media.ImagePrimary, selected[0].Type)
	assert.Equal(t, "logo-ja", selected[1].URL)
	assert.Equal(t, "backdrop", selected[2].URL)
}

func TestSelectImages_OutputFollowsRequestedOrder(t *testing.T) {
	s := newTestSelector()

	item := media.Item{Kind: media.KindMovie}
	candidates := []media.Image{
		{Type: media.ImagePrimary, URL: "poster"},
		{Type: media.ImageBackdrop, URL: "backdrop"},
	}

	selected := s.SelectImages(item, candidates, []media.ImageType{media.ImageBackdrop, media.ImagePrimary})
	require.Len(t, selected, 2)
	assert.Equal(t, "backdrop", selected[0].URL)
	assert.Equal(t, "poster", selected[1].URL)
}

func TestSelectImages_EmptyBucketsSkipped(t *testing.T) {
	s := newTestSelector()

	selected := s.SelectImages(media.Item{Kind: media.KindMovie}, nil, media.ImageTypes())
	assert.Empty(t, selected)
}

func TestSelectImages_PreferredLanguageFromItem(t *testing.T) {
	s := newTestSelector()

	item := media.Item{
		Kind:                      media.KindMovie,
		PreferredMetadataLanguage: "de",
	}
	candidates := []media.Image{
		{Type: media.ImagePrimary, Language: "fr", VoteCount: 50, URL: "fr"},
		{Type: media.ImagePrimary, Language: "de", VoteCount: 1, URL: "de"},
	}

	selected := s.SelectImages(item, candidates, []media.ImageType{media.ImagePrimary})
	require.Len(t, selected, 1)
	assert.Equal(t, "de", selected[0].URL)
}

func TestSelectImages_DefaultLanguageOverride(t *testing.T) {
	s := newTestSelector(WithDefaultMetadataLanguage("fr"))

	item := media.Item{Kind: media.KindMovie}
	candidates := []media.Image{
		{Type: media.ImagePrimary, Language: "fr", VoteCount: 1, URL: "fr"},
		{Type: media.ImagePrimary, Language: "it", VoteCount: 50, URL: "it"},
	}

	selected := s.SelectImages(item, candidates, []media.ImageType{media.ImagePrimary})
	require.Len(t, selected, 1)
	assert.Equal(t, "fr", selected[0].URL)
}

func TestSelectImages_SeasonUsesSeriesLanguage(t *testing.T) {
	s := newTestSelector()

	series := media.Item{Kind: media.KindSeries, Studios: []string{"KBS"}}
	season := media.Item{Kind: media.KindSeason, Parent: &series}

	candidates := []media.Image{
		{Type: media.ImagePrimary, Language: "ko", VoteCount: 1, URL: "ko"},
		{Type: media.ImagePrimary, Language: "en", VoteCount: 99, URL: "en"},
	}

	selected := s.SelectImages(season, candidates, []media.ImageType{media.ImagePrimary})
	require.Len(t, selected, 1)
	assert.Equal(t, "ko", selected[0].URL)
}
