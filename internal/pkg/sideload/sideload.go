// Package sideload downloads remote featured images into the upload directory.
package sideload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/bizdir/internal/pkg/imageprocessor"
)

var (
	ErrInvalidURL = errors.New("invalid image url")
	ErrNotImage   = errors.New("not a supported image")
	ErrTooLarge   = errors.New("image exceeds the size limit")
)

// Mirror copies stored files to secondary storage.
type Mirror interface {
	Put(ctx context.Context, localFilePath string) (string, error)
}

type Fetcher struct {
	client   *http.Client
	dir      string
	maxBytes int64
	mirror   Mirror
}

// New returns a fetcher writing into dir. mirror may be nil.
func New(dir string, timeout time.Duration, maxBytes int64, mirror Mirror) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		dir:      dir,
		maxBytes: maxBytes,
		mirror:   mirror,
	}
}

// Fetch downloads rawURL, stores and processes it and returns the public path
// of the stored image.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "bizdir-importer/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", ErrTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ext := imageprocessor.DetectExtension(head)
	if ext == "" {
		return "", ErrNotImage
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", fmt.Errorf("error creating directory %s: %w", f.dir, err)
	}
	name := uuid.NewString() + ext
	target := filepath.Join(f.dir, name)
	if err := writeFile(target, data); err != nil {
		return "", err
	}

	res, err := imageprocessor.Process(target)
	if err != nil {
		_ = os.Remove(target)
		return "", err
	}
	f.mirrorFiles(ctx, res)

	log.Infof("[Sideload] stored %s as %s", u.Host, name)
	return "/" + filepath.ToSlash(target), nil
}

func (f *Fetcher) mirrorFiles(ctx context.Context, res *imageprocessor.Result) {
	if f.mirror == nil {
		return
	}
	for _, p := range []string{res.Original, res.Thumbnail, res.WebP} {
		if p == "" {
			continue
		}
		if _, err := f.mirror.Put(ctx, p); err != nil {
			log.Warnf("[Sideload] mirror upload failed for %s: %v", filepath.Base(p), err)
		}
	}
}

func writeFile(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if _, err := io.Copy(out, bytes.NewReader(data)); err != nil {
		out.Close()
		_ = os.Remove(path)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return out.Close()
}

// ThumbnailURL derives the thumbnail path of a stored featured image.
func ThumbnailURL(imageURL string) string {
	if imageURL == "" || !strings.HasPrefix(imageURL, "/") {
		return imageURL
	}
	ext := filepath.Ext(imageURL)
	return strings.TrimSuffix(imageURL, ext) + "_thumb.jpg"
}
