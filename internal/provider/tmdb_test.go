package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MimeLyc/artwork-curator/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tmdbImagesPayload = `{
	"backdrops": [
		{"file_path": "/back1.jpg", "iso_639_1": null, "vote_count": 12, "width": 3840, "height": 2160}
	],
	"posters": [
		{"file_path": "/poster-ja.jpg", "iso_639_1": "ja", "vote_count": 7, "width": 2000, "height": 3000},
		{"file_path": "/poster-en.jpg", "iso_639_1": "en", "vote_count": 30, "width": 1000, "height": 1500}
	],
	"logos": [
		{"file_path": "/logo.png", "iso_639_1": "eng", "vote_count": 3, "width": 800, "height": 310}
	]
}`

func TestTMDBImages(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "key123", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tmdbImagesPayload))
	}))
	defer srv.Close()

	p := NewTMDBProvider("key123", WithTMDBBaseURL(srv.URL))
	item := media.Item{
		Name: "Spirited Away",
		Kind: media.KindMovie,
		IDs:  media.ExternalIDs{TMDB: "129"},
	}

	images, err := p.Images(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "/movie/129/images", gotPath)
	require.Len(t, images, 4)

	assert.Equal(t, media.ImagePrimary, images[0].Type)
	assert.Equal(t, "ja", images[0].Language)
	assert.Equal(t, 7, images[0].VoteCount)
	assert.Equal(t, 2000, images[0].Width)
	assert.Equal(t, tmdbImageBaseURL+"/poster-ja.jpg", images[0].URL)
	assert.Equal(t, "tmdb", images[0].Provider)

	// "eng" normalizes to the base code.
	assert.Equal(t, media.ImageLogo, images[2].Type)
	assert.Equal(t, "en", images[2].Language)

	// null iso_639_1 maps to the untagged neutral tier.
	assert.Equal(t, media.ImageBackdrop, images[3].Type)
	assert.Equal(t, "", images[3].Language)
}

func TestTMDBImages_SeriesUsesTVEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"posters": [], "logos": [], "backdrops": []}`))
	}))
	defer srv.Close()

	p := NewTMDBProvider("k", WithTMDBBaseURL(srv.URL))
	item := media.Item{Kind: media.KindSeries, IDs: media.ExternalIDs{TMDB: "456"}}

	images, err := p.Images(context.Background(), item)
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, "/tv/456/images", gotPath)
}

func TestTMDBImages_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewTMDBProvider("", WithTMDBBaseURL(srv.URL))
	_, err := p.Images(context.Background(), media.Item{IDs: media.ExternalIDs{TMDB: "1"}})
	assert.Error(t, err, "missing api key")

	p = NewTMDBProvider("k", WithTMDBBaseURL(srv.URL))
	_, err = p.Images(context.Background(), media.Item{Name: "no-id"})
	assert.Error(t, err, "missing tmdb id")

	_, err = p.Images(context.Background(), media.Item{IDs: media.ExternalIDs{TMDB: "1"}})
	assert.Error(t, err, "non-200 response")
}
