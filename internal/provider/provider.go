package provider

import (
	"context"

	"github.com/MimeLyc/artwork-curator/internal/media"
)

// Provider supplies candidate artwork for a media item from one upstream
// image source.
type Provider interface {
	Name() string
	Images(ctx context.Context, item media.Item) ([]media.Image, error)
}
