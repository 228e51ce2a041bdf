package imageprocessor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// registers the webp decoder for downloaded images
	_ "golang.org/x/image/webp"
)

// Featured image sizes
const (
	MaxWidth        = 1600
	ThumbnailWidth  = 600
	ThumbnailHeight = 400
	webpQuality     = 85
)

// Result describes the files written for one featured image.
type Result struct {
	Width     int
	Height    int
	Original  string
	Thumbnail string
	WebP      string
}

// Process normalises a downloaded image in place and writes a cropped
// thumbnail and a WebP copy next to it. File names derive from the original.
func Process(path string) (*Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening image: %w", err)
	}

	if o := Orientation(path); o > 1 {
		img = applyOrientation(img, o)
		log.Debugf("[ImageProcessor] applied exif orientation %d to %s", o, filepath.Base(path))
	}
	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	res := &Result{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		Original: path,
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	// GIF and WebP sources keep their bytes, re-encoding would drop frames or quality
	if ext != ".gif" && ext != ".webp" {
		if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
			return nil, fmt.Errorf("error saving image: %w", err)
		}
	}

	thumb := imaging.Fill(img, ThumbnailWidth, ThumbnailHeight, imaging.Center, imaging.Lanczos)
	res.Thumbnail = base + "_thumb.jpg"
	if err := imaging.Save(thumb, res.Thumbnail, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("error saving thumbnail: %w", err)
	}

	if ext != ".webp" {
		res.WebP = base + ".webp"
		if err := saveWebP(img, res.WebP); err != nil {
			// the jpeg is enough to render the listing
			log.Warnf("[ImageProcessor] webp variant failed for %s: %v", filepath.Base(path), err)
			res.WebP = ""
		}
	}

	log.Infof("[ImageProcessor] processed %s (%dx%d)", filepath.Base(path), res.Width, res.Height)
	return res, nil
}

// saveWebP saves an image in WebP format
func saveWebP(img image.Image, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating WebP file: %w", err)
	}
	defer output.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}
	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}
	return nil
}

// applyOrientation rotates and flips img according to an EXIF orientation value.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
