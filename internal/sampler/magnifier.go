package sampler

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/pipette/internal/colour"
)

// MagnifierOptions configures RenderMagnified.
type MagnifierOptions struct {
	// Zoom is the number of output pixels per source pixel.
	Zoom int
	// Size is the side of the square output in pixels.
	Size int
	// Crosshair is the colour of the lines through the sampled pixel.
	Crosshair colour.RGB
	// Outline is the colour of the box around the sampled pixel.
	Outline colour.RGB
}

var (
	// AppMagnifier matches the image view: 12x12 source pixels at 10x.
	AppMagnifier = MagnifierOptions{
		Zoom:      10,
		Size:      120,
		Crosshair: colour.RGB{R: 0x63, G: 0x66, B: 0xF1},
		Outline:   colour.RGB{R: 0x63, G: 0x66, B: 0xF1},
	}

	// CaptureMagnifier matches the page picker: 28x28 source pixels at 5x.
	CaptureMagnifier = MagnifierOptions{
		Zoom:      5,
		Size:      140,
		Crosshair: colour.RGB{R: 0xFF, G: 0xFF, B: 0xFF},
		Outline:   colour.RGB{R: 0xFF, G: 0x00, B: 0x00},
	}
)

// Validate checks the options describe at least one whole source pixel.
func (o MagnifierOptions) Validate() error {
	if o.Zoom < 1 {
		return fmt.Errorf("zoom must be at least 1, got %d", o.Zoom)
	}
	if o.Size < o.Zoom {
		return fmt.Errorf("magnifier size %d is smaller than zoom %d", o.Size, o.Zoom)
	}
	return nil
}

// Magnified is a rendered magnifier view.
type Magnified struct {
	// Image is the Size x Size nearest-neighbour upscale.
	Image *colour.PixelBuffer
	// Source is the region of the input buffer that was magnified.
	Source image.Rectangle
	// Cell is the area of Image covered by the sampled pixel.
	Cell image.Rectangle
}

// RenderMagnified upscales the square region around center without
// smoothing and marks the sampled pixel with a crosshair and outline. The
// region is shifted to stay inside buf near the edges, so the marked cell is
// only in the exact centre when center is far enough from the border.
func RenderMagnified(buf *colour.PixelBuffer, center image.Point, opts MagnifierOptions) (*Magnified, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if buf.Empty() {
		return nil, fmt.Errorf("cannot magnify an empty buffer")
	}
	if !buf.Contains(center.X, center.Y) {
		return nil, fmt.Errorf("%w: magnifier centre (%d, %d) outside %dx%d buffer",
			colour.ErrOutOfBounds, center.X, center.Y, buf.Width(), buf.Height())
	}

	side := opts.Size / opts.Zoom
	srcW, srcH := min(side, buf.Width()), min(side, buf.Height())
	ox := min(max(center.X-srcW/2, 0), buf.Width()-srcW)
	oy := min(max(center.Y-srcH/2, 0), buf.Height()-srcH)
	src := image.Rect(ox, oy, ox+srcW, oy+srcH)

	dst := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), buf, src, draw.Src, nil)

	cell := image.Rect(
		cellStart(center.X-ox, srcW, opts.Size), cellStart(center.Y-oy, srcH, opts.Size),
		cellStart(center.X-ox+1, srcW, opts.Size), cellStart(center.Y-oy+1, srcH, opts.Size),
	)
	drawCrosshair(dst, cell, opts)

	return &Magnified{Image: colour.FromImage(dst), Source: src, Cell: cell}, nil
}

// cellStart returns the first output pixel that nearest-neighbour scaling
// maps to source pixel j, sampling at output pixel centres.
func cellStart(j, srcLen, dstLen int) int {
	for d := 0; d < dstLen; d++ {
		if (2*d+1)*srcLen/(2*dstLen) >= j {
			return d
		}
	}
	return dstLen
}

func drawCrosshair(dst *image.NRGBA, cell image.Rectangle, opts MagnifierOptions) {
	size := dst.Bounds().Dx()
	midX := (cell.Min.X + cell.Max.X - 1) / 2
	midY := (cell.Min.Y + cell.Max.Y - 1) / 2
	line := opts.Crosshair.NRGBA()
	box := opts.Outline.NRGBA()

	for i := 0; i < size; i++ {
		if i < cell.Min.X || i >= cell.Max.X {
			dst.SetNRGBA(i, midY, line)
		}
		if i < cell.Min.Y || i >= cell.Max.Y {
			dst.SetNRGBA(midX, i, line)
		}
	}

	for x := cell.Min.X; x < cell.Max.X; x++ {
		dst.SetNRGBA(x, cell.Min.Y, box)
		dst.SetNRGBA(x, cell.Max.Y-1, box)
	}
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		dst.SetNRGBA(cell.Min.X, y, box)
		dst.SetNRGBA(cell.Max.X-1, y, box)
	}
}
