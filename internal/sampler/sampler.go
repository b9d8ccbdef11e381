// Package sampler reads single pixels and magnified regions from a pixel
// buffer at on-screen coordinates.
package sampler

import (
	"fmt"
	"image"
	"math"

	"github.com/jmylchreest/pipette/internal/colour"
)

// Point is a position in display coordinates. Display coordinates may be
// fractional (CSS pixels on a scaled page).
type Point struct {
	X, Y float64
}

// Rounding selects how a scaled display coordinate snaps to a buffer pixel.
type Rounding int

const (
	// RoundFloor truncates toward the top-left pixel. Used when an image is
	// shown scaled inside a page.
	RoundFloor Rounding = iota
	// RoundNearest rounds to the nearest pixel. Used for device-pixel-ratio
	// scaled screen captures.
	RoundNearest
)

// Scale maps display coordinates onto buffer coordinates.
type Scale struct {
	X, Y     float64
	Rounding Rounding
}

// Identity is a 1:1 display-to-buffer mapping.
var Identity = Scale{X: 1, Y: 1}

// DisplayScale returns the mapping for buf shown at displayWidth x displayHeight.
func DisplayScale(buf *colour.PixelBuffer, displayWidth, displayHeight float64) (Scale, error) {
	if buf.Empty() {
		return Scale{}, fmt.Errorf("cannot scale to an empty buffer")
	}
	if displayWidth <= 0 || displayHeight <= 0 {
		return Scale{}, fmt.Errorf("display size must be positive, got %gx%g", displayWidth, displayHeight)
	}
	return Scale{
		X:        float64(buf.Width()) / displayWidth,
		Y:        float64(buf.Height()) / displayHeight,
		Rounding: RoundFloor,
	}, nil
}

// DeviceScale returns the mapping for a screen capture taken at the given
// device pixel ratio. A ratio <= 0 is treated as 1.
func DeviceScale(dpr float64) Scale {
	if dpr <= 0 {
		dpr = 1
	}
	return Scale{X: dpr, Y: dpr, Rounding: RoundNearest}
}

// Map converts a display point to buffer pixel coordinates. The result may
// lie outside the buffer.
func (s Scale) Map(p Point) image.Point {
	x, y := p.X*s.X, p.Y*s.Y
	if s.Rounding == RoundNearest {
		return image.Pt(int(math.Floor(x+0.5)), int(math.Floor(y+0.5)))
	}
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

// SampleAt returns the colour under display point p. A point that maps
// outside the buffer fails with colour.ErrOutOfBounds; SampleAt never clamps.
func SampleAt(buf *colour.PixelBuffer, p Point, s Scale) (colour.RGB, error) {
	if buf.Empty() {
		return colour.RGB{}, fmt.Errorf("%w: buffer is empty", colour.ErrOutOfBounds)
	}
	at := s.Map(p)
	return buf.RGBAt(at.X, at.Y)
}

// Clamp moves p to the nearest pixel inside buf.
func Clamp(buf *colour.PixelBuffer, p image.Point) image.Point {
	return image.Pt(
		min(max(p.X, 0), max(buf.Width()-1, 0)),
		min(max(p.Y, 0), max(buf.Height()-1, 0)),
	)
}
