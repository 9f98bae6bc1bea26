// Package images handles screenshot discovery, loading and the light
// preprocessing pass that improves OCR accuracy on the app's dark UI.
package images

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// maxWidth is the width screenshots are downscaled to before OCR. Phone
// screenshots arrive at 2-3x this size and the extra resolution only slows
// recognition down.
const maxWidth = 1600

// SupportedExtensions lists the image formats accepted from an input
// directory, lowercase with the leading dot.
var SupportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Find resolves an input path to a list of image files.
//
// A file path is returned as-is. A directory is listed without recursion,
// sorted by name, and filtered to supported extensions. Anything else
// yields an empty list.
func Find(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if SupportedExtensions[ext] {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

// Load decodes an image file.
func Load(path string) (image.Image, error) {
	return imaging.Open(path)
}

// Preprocess prepares a screenshot for OCR: downscale oversized images,
// drop to grayscale, raise contrast, then a light blur to knock out
// compression noise.
func Preprocess(img image.Image) image.Image {
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 30)
	return imaging.Blur(img, 1.0)
}

// HeaderBand crops the top band of the screenshot where the "History"
// title sits: 18% of the image height, but at least 60px so tightly
// cropped screenshots still cover the title.
func HeaderBand(img image.Image) image.Image {
	b := img.Bounds()
	topH := int(float64(b.Dy()) * 0.18)
	if topH < 60 {
		topH = 60
	}
	if topH > b.Dy() {
		topH = b.Dy()
	}
	return imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+topH))
}
