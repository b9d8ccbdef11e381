package image

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/pipette/internal/colour"
)

// Default display bounds for a loaded image.
const (
	DisplayMaxWidth  = 800
	DisplayMaxHeight = 500
)

// FitSize returns the size of a width x height image shrunk, keeping its
// aspect ratio, to fit maxWidth x maxHeight. Images that already fit are
// returned unchanged; nothing is upscaled.
func FitSize(width, height, maxWidth, maxHeight int) (int, int) {
	w, h := float64(width), float64(height)
	if w > float64(maxWidth) {
		h = h * float64(maxWidth) / w
		w = float64(maxWidth)
	}
	if h > float64(maxHeight) {
		w = w * float64(maxHeight) / h
		h = float64(maxHeight)
	}
	return max(int(w), 1), max(int(h), 1)
}

// FitToDisplay scales img to fit maxWidth x maxHeight and returns the result
// as a pixel buffer. This is the buffer the picker samples and clusters.
func FitToDisplay(img image.Image, maxWidth, maxHeight int) *colour.PixelBuffer {
	bounds := img.Bounds()
	if bounds.Empty() {
		return colour.FromImage(img)
	}

	w, h := FitSize(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if w == bounds.Dx() && h == bounds.Dy() {
		return colour.FromImage(img)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return colour.FromImage(dst)
}
