package imageprocessor

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestProcessWritesThumbnail(t *testing.T) {
	path := writeTestImage(t, "shop.png", 800, 600)

	res, err := Process(path)
	require.NoError(t, err)
	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 600, res.Height)

	thumb, err := imaging.Open(res.Thumbnail)
	require.NoError(t, err)
	assert.Equal(t, ThumbnailWidth, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailHeight, thumb.Bounds().Dy())
}

func TestProcessShrinksLargeImages(t *testing.T) {
	path := writeTestImage(t, "wide.jpg", MaxWidth*2, 400)

	res, err := Process(path)
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, res.Width)
	assert.Equal(t, 200, res.Height)
}

func TestProcessRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := Process(path)
	assert.Error(t, err)
}

func TestOrientationDefaultsToOne(t *testing.T) {
	path := writeTestImage(t, "plain.png", 10, 10)
	assert.Equal(t, 1, Orientation(path))
	assert.Equal(t, 1, Orientation(filepath.Join(t.TempDir(), "missing.jpg")))
}

func TestApplyOrientationSwapsAxes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	rotated := applyOrientation(img, 6)
	assert.Equal(t, 20, rotated.Bounds().Dx())
	assert.Equal(t, 40, rotated.Bounds().Dy())
	assert.Equal(t, img, applyOrientation(img, 1))
}

func TestDetectExtension(t *testing.T) {
	assert.Equal(t, ".png", DetectExtension([]byte("\x89PNG\r\n\x1a\n0000")))
	assert.Equal(t, ".jpg", DetectExtension([]byte("\xff\xd8\xff\xe0")))
	assert.Equal(t, ".gif", DetectExtension([]byte("GIF89a")))
	assert.Equal(t, "", DetectExtension([]byte("<html></html>")))
}
