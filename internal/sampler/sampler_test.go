package sampler

import (
	"errors"
	"image"
	"testing"

	"github.com/jmylchreest/pipette/internal/colour"
)

// coordBuffer returns a buffer where pixel (x, y) has R=x and G=y.
func coordBuffer(width, height int) *colour.PixelBuffer {
	pix := make([]uint8, 0, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix = append(pix, uint8(x), uint8(y), 0, 0xff)
		}
	}
	buf, err := colour.NewPixelBuffer(width, height, pix)
	if err != nil {
		panic(err)
	}
	return buf
}

func TestSampleAtDisplayScale(t *testing.T) {
	buf := coordBuffer(400, 200)
	scale, err := DisplayScale(buf, 200, 100)
	if err != nil {
		t.Fatalf("DisplayScale error: %v", err)
	}

	got, err := SampleAt(buf, Point{X: 50, Y: 50}, scale)
	if err != nil {
		t.Fatalf("SampleAt error: %v", err)
	}
	if got.R != 100 || got.G != 100 {
		t.Errorf("SampleAt(50, 50) read pixel (%d, %d), want (100, 100)", got.R, got.G)
	}
}

func TestScaleMap(t *testing.T) {
	tests := []struct {
		name  string
		scale Scale
		point Point
		want  image.Point
	}{
		{name: "identity", scale: Identity, point: Point{X: 3, Y: 4}, want: image.Pt(3, 4)},
		{name: "floor fractional", scale: Scale{X: 2, Y: 2}, point: Point{X: 10.7, Y: 0.4}, want: image.Pt(21, 0)},
		{name: "downscaled display", scale: Scale{X: 0.5, Y: 0.5}, point: Point{X: 9, Y: 9}, want: image.Pt(4, 4)},
		{name: "device ratio rounds", scale: DeviceScale(1.5), point: Point{X: 3, Y: 5}, want: image.Pt(5, 8)},
		{name: "device ratio rounds down", scale: DeviceScale(1.25), point: Point{X: 1, Y: 1}, want: image.Pt(1, 1)},
		{name: "zero ratio is one", scale: DeviceScale(0), point: Point{X: 7, Y: 8}, want: image.Pt(7, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scale.Map(tt.point); got != tt.want {
				t.Errorf("Map(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestSampleAtOutOfBounds(t *testing.T) {
	buf := coordBuffer(10, 10)

	for _, p := range []Point{{X: -0.5, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}} {
		if _, err := SampleAt(buf, p, Identity); !errors.Is(err, colour.ErrOutOfBounds) {
			t.Errorf("SampleAt(%v) error = %v, want ErrOutOfBounds", p, err)
		}
	}

	empty, _ := colour.NewPixelBuffer(0, 0, nil)
	if _, err := SampleAt(empty, Point{}, Identity); !errors.Is(err, colour.ErrOutOfBounds) {
		t.Errorf("SampleAt on empty buffer error = %v", err)
	}
}

func TestDisplayScaleErrors(t *testing.T) {
	buf := coordBuffer(4, 4)
	if _, err := DisplayScale(buf, 0, 4); err == nil {
		t.Error("expected error for zero display width")
	}
	empty, _ := colour.NewPixelBuffer(0, 0, nil)
	if _, err := DisplayScale(empty, 4, 4); err == nil {
		t.Error("expected error for empty buffer")
	}
}

func TestClamp(t *testing.T) {
	buf := coordBuffer(10, 5)
	tests := []struct {
		in, want image.Point
	}{
		{image.Pt(-3, 2), image.Pt(0, 2)},
		{image.Pt(12, 9), image.Pt(9, 4)},
		{image.Pt(4, 4), image.Pt(4, 4)},
	}
	for _, tt := range tests {
		if got := Clamp(buf, tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
