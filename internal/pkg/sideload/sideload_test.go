package sideload

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct{ keys []string }

func (m *recordingMirror) Put(_ context.Context, p string) (string, error) {
	m.keys = append(m.keys, filepath.Base(p))
	return filepath.Base(p), nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 64, 48))))
	return buf.Bytes()
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestFetchStoresImage(t *testing.T) {
	chdirTemp(t)
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			_, _ = w.Write(body)
		case "/page.html":
			_, _ = w.Write([]byte("<html><body>hi</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	mirror := &recordingMirror{}
	f := New("uploads/businesses", 5*time.Second, 1<<20, mirror)

	stored, err := f.Fetch(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "/uploads/businesses/"))
	assert.True(t, strings.HasSuffix(stored, ".png"))

	_, err = os.Stat(strings.TrimPrefix(stored, "/"))
	require.NoError(t, err)
	_, err = os.Stat(strings.TrimPrefix(ThumbnailURL(stored), "/"))
	require.NoError(t, err)
	assert.NotEmpty(t, mirror.keys)

	_, err = f.Fetch(context.Background(), srv.URL+"/page.html")
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestFetchRejectsLargeAndInvalid(t *testing.T) {
	chdirTemp(t)
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := New("uploads/businesses", 5*time.Second, 10, nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/big.png")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Fetch(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = f.Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "/uploads/businesses/a_thumb.jpg", ThumbnailURL("/uploads/businesses/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", ThumbnailURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "", ThumbnailURL(""))
}
