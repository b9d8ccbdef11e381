package colour

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// PixelBuffer is a read-only grid of non-premultiplied RGBA pixels with its
// origin at the top-left. It implements image.Image.
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8
}

// NewPixelBuffer wraps raw RGBA bytes (4 per pixel, row-major) as a buffer.
// The slice is used as-is and must not be modified afterwards.
func NewPixelBuffer(width, height int, pix []uint8) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid buffer dimensions: %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel data length %d does not match %dx%d RGBA buffer", len(pix), width, height)
	}
	return &PixelBuffer{width: width, height: height, pix: pix}, nil
}

// FromImage copies img into a new PixelBuffer whose origin is img.Bounds().Min.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) && nrgba.Stride == bounds.Dx()*4 {
		pix := make([]uint8, len(nrgba.Pix))
		copy(pix, nrgba.Pix)
		return &PixelBuffer{width: bounds.Dx(), height: bounds.Dy(), pix: pix}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return &PixelBuffer{width: bounds.Dx(), height: bounds.Dy(), pix: dst.Pix}
}

// FillBuffer returns a width x height buffer of a single colour.
func FillBuffer(width, height int, c RGB) *PixelBuffer {
	pix := make([]uint8, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, 0xff
	}
	return &PixelBuffer{width: width, height: height, pix: pix}
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int { return b.height }

// Len returns the number of pixels in the buffer.
func (b *PixelBuffer) Len() int { return b.width * b.height }

// Empty reports whether the buffer has no pixels.
func (b *PixelBuffer) Empty() bool { return b == nil || b.width == 0 || b.height == 0 }

// Contains reports whether (x, y) addresses a pixel in the buffer.
func (b *PixelBuffer) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// RGBAt returns the colour at (x, y), ignoring alpha.
func (b *PixelBuffer) RGBAt(x, y int) (RGB, error) {
	if !b.Contains(x, y) {
		return RGB{}, fmt.Errorf("%w: (%d, %d) outside %dx%d buffer", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return b.index(y*b.width + x), nil
}

// index returns the colour of the i-th pixel in row-major order.
func (b *PixelBuffer) index(i int) RGB {
	o := i * 4
	return RGB{R: b.pix[o], G: b.pix[o+1], B: b.pix[o+2]}
}

// ColorModel implements image.Image.
func (b *PixelBuffer) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image.
func (b *PixelBuffer) At(x, y int) color.Color {
	if !b.Contains(x, y) {
		return color.NRGBA{}
	}
	o := (y*b.width + x) * 4
	return color.NRGBA{R: b.pix[o], G: b.pix[o+1], B: b.pix[o+2], A: b.pix[o+3]}
}

// RGBA64At implements image.RGBA64Image. golang.org/x/image/draw only reads
// sources through this method when the destination is an image.RGBA64Image.
func (b *PixelBuffer) RGBA64At(x, y int) color.RGBA64 {
	if !b.Contains(x, y) {
		return color.RGBA64{}
	}
	r, g, bl, a := b.At(x, y).RGBA()
	return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(bl), A: uint16(a)}
}

// ToRGB converts any color.Color to RGB, dropping alpha.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// NRGBA returns the colour as an opaque color.NRGBA.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
