package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MimeLyc/artwork-curator/pkg/file"
)

const defaultMaxImageBytes = 32 << 20 // 32 MiB

// extByContentType maps image content types to the on-disk extension.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Fetcher downloads selected artwork to the library. Writes go through a
// temp file and rename so a crashed download never leaves a torn image
// next to the media.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

type Option func(*Fetcher)

func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: defaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Download fetches url and stores it at destPath, with the extension
// adjusted to the response content type. Returns the final path.
func (f *Fetcher) Download(ctx context.Context, url, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > f.maxBytes {
		return "", fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image payload")
	}

	finalPath := file.ReplaceExt(destPath, ext)
	if err := file.WriteAtomic(finalPath, data, 0o644); err != nil {
		return "", err
	}
	return finalPath, nil
}
