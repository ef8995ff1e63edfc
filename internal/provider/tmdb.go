package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MimeLyc/artwork-curator/internal/media"
)

const defaultTMDBBaseURL = "https://api.themoviedb.org/3"

// tmdbImageBaseURL prefixes the file_path values TMDB returns.
const tmdbImageBaseURL = "https://image.tmdb.org/t/p/original"

// TMDBProvider fetches artwork candidates from themoviedb.org. TMDB is
// the richest source: every image carries a language tag, vote count,
// and pixel dimensions.
type TMDBProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type TMDBOption func(*TMDBProvider)

// WithTMDBBaseURL points the client at a different endpoint (tests).
func WithTMDBBaseURL(url string) TMDBOption {
	return func(p *TMDBProvider) {
		p.baseURL = url
	}
}

func NewTMDBProvider(apiKey string, opts ...TMDBOption) *TMDBProvider {
	p := &TMDBProvider{
		apiKey:  apiKey,
		baseURL: defaultTMDBBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TMDBProvider) Name() string { return "tmdb" }

type tmdbImage struct {
	FilePath  string `json:"file_path"`
	ISO6391   string `json:"iso_639_1"`
	VoteCount int    `json:"vote_count"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type tmdbImagesResult struct {
	Posters   []tmdbImage `json:"posters"`
	Logos     []tmdbImage `json:"logos"`
	Backdrops []tmdbImage `json:"backdrops"`
}

func (p *TMDBProvider) Images(ctx context.Context, item media.Item) ([]media.Image, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("TMDB API key not configured")
	}
	if item.IDs.TMDB == "" {
		return nil, fmt.Errorf("item %q has no TMDB id", item.Name)
	}

	endpoint := "movie"
	if item.Kind == media.KindSeries || item.Kind == media.KindSeason {
		endpoint = "tv"
	}
	reqURL := fmt.Sprintf("%s/%s/%s/images?api_key=%s", p.baseURL, endpoint, item.IDs.TMDB, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB returned %d", resp.StatusCode)
	}

	var result tmdbImagesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	ret := make([]media.Image, 0, len(result.Posters)+len(result.Logos)+len(result.Backdrops))
	ret = append(ret, p.convert(result.Posters, media.ImagePrimary)...)
	ret = append(ret, p.convert(result.Logos, media.ImageLogo)...)
	ret = append(ret, p.convert(result.Backdrops, media.ImageBackdrop)...)
	return ret, nil
}

func (p *TMDBProvider) convert(images []tmdbImage, imageType media.ImageType) []media.Image {
	ret := make([]media.Image, 0, len(images))
	for _, img := range images {
		if img.FilePath == "" {
			continue
		}
		ret = append(ret, media.Image{
			Type:      imageType,
			Language:  NormalizeLanguage(img.ISO6391),
			VoteCount: img.VoteCount,
			Width:     img.Width,
			Height:    img.Height,
			URL:       tmdbImageBaseURL + img.FilePath,
			Provider:  p.Name(),
		})
	}
	return ret
}
