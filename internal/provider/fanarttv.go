package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MimeLyc/artwork-curator/internal/media"
)

const defaultFanartBaseURL = "https://webservice.fanart.tv/v3"

// FanartProvider fetches artwork candidates from fanart.tv. Fanart tags
// language and likes but reports no pixel dimensions, so its candidates
// compete on language tier and votes only.
type FanartProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type FanartOption func(*FanartProvider)

func WithFanartBaseURL(url string) FanartOption {
	return func(p *FanartProvider) {
		p.baseURL = url
	}
}

func NewFanartProvider(apiKey string, opts ...FanartOption) *FanartProvider {
	p := &FanartProvider{
		apiKey:  apiKey,
		baseURL: defaultFanartBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *FanartProvider) Name() string { return "fanart.tv" }

type fanartImage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Likes string `json:"likes"`
	Lang  string `json:"lang"`
}

// fanartResult covers both the movie and tv payloads; section names
// differ per endpoint but the image shape is identical.
type fanartResult struct {
	// movies
	MoviePosters     []fanartImage `json:"movieposter"`
	HDMovieLogos     []fanartImage `json:"hdmovielogo"`
	MovieLogos       []fanartImage `json:"movielogo"`
	MovieThumbs      []fanartImage `json:"moviethumb"`
	MovieBackgrounds []fanartImage `json:"moviebackground"`
	// tv
	TVPosters       []fanartImage `json:"tvposter"`
	HDTVLogos       []fanartImage `json:"hdtvlogo"`
	ClearLogos      []fanartImage `json:"clearlogo"`
	TVThumbs        []fanartImage `json:"tvthumb"`
	ShowBackgrounds []fanartImage `json:"showbackground"`
}

func (p *FanartProvider) Images(ctx context.Context, item media.Item) ([]media.Image, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("fanart.tv API key not configured")
	}

	var reqURL string
	switch {
	case item.Kind == media.KindSeries || item.Kind == media.KindSeason:
		if item.IDs.TVDB == "" {
			return nil, fmt.Errorf("item %q has no TVDB id", item.Name)
		}
		reqURL = fmt.Sprintf("%s/tv/%s?api_key=%s", p.baseURL, item.IDs.TVDB, p.apiKey)
	default:
		if item.IDs.TMDB == "" {
			return nil, fmt.Errorf("item %q has no TMDB id", item.Name)
		}
		reqURL = fmt.Sprintf("%s/movies/%s?api_key=%s", p.baseURL, item.IDs.TMDB, p.apiKey)
	}

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
		return nil, fmt.Errorf("fanart.tv returned %d", resp.StatusCode)
	}

	var result fanartResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	ret := make([]media.Image, 0)
	ret = append(ret, p.convert(media.ImagePrimary, result.MoviePosters, result.TVPosters)...)
	ret = append(ret, p.convert(media.ImageLogo, result.HDMovieLogos, result.MovieLogos, result.HDTVLogos, result.ClearLogos)...)
	ret = append(ret, p.convert(media.ImageThumb, result.MovieThumbs, result.TVThumbs)...)
	ret = append(ret, p.convert(media.ImageBackdrop, result.MovieBackgrounds, result.ShowBackgrounds)...)
	return ret, nil
}

func (p *FanartProvider) convert(imageType media.ImageType, sections ...[]fanartImage) []media.Image {
	ret := make([]media.Image, 0)
	for _, section := range sections {
		for _, img := range section {
			if img.URL == "" {
				continue
			}
			likes, _ := strconv.Atoi(img.Likes)
			ret = append(ret, media.Image{
				Type:      imageType,
				Language:  NormalizeLanguage(img.Lang),
				VoteCount: likes,
				URL:       img.URL,
				Provider:  p.Name(),
			})
		}
	}
	return ret
}
