package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New()

	got, err := f.Download(context.Background(), srv.URL, filepath.Join(dir, "poster.jpg"))
	require.NoError(t, err)

	// Extension follows the content type, not the requested name.
	assert.True(t, strings.HasSuffix(got, "poster.png"), got)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestDownload_RejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>not found</html>"))
	}))
	defer srv.Close()

	f := New()
	_, err := f.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "poster.jpg"))
	assert.Error(t, err)
}

func TestDownload_RejectsOversized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := New(WithMaxBytes(1024))
	_, err := f.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "poster.jpg"))
	assert.Error(t, err)
}

func TestDownload_RejectsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New()
	_, err := f.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "poster.jpg"))
	assert.Error(t, err)
}
