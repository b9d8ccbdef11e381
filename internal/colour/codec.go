// Package colour provides colour conversion, pixel buffers and palette extraction.
package colour

import (
	"fmt"
	"math"
	"strings"
)

// RGB represents a colour as 8-bit red, green and blue channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL is the rounded HSL form of a colour.
// H is in degrees [0, 360), S and L are percentages [0, 100].
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

const hexDigits = "0123456789ABCDEF"

// Hex returns the colour as "#RRGGBB" with uppercase digits.
func (c RGB) Hex() string {
	buf := [7]byte{'#'}
	for i, v := range [3]uint8{c.R, c.G, c.B} {
		buf[1+i*2] = hexDigits[v>>4]
		buf[2+i*2] = hexDigits[v&0x0f]
	}
	return string(buf[:])
}

// String returns the colour in CSS functional notation, e.g. "rgb(99, 102, 241)".
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// HSL converts the colour to rounded HSL.
func (c RGB) HSL() HSL {
	return RGBToHSL(c)
}

// String returns the colour in CSS functional notation, e.g. "hsl(239, 84%, 67%)".
func (h HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", h.H, h.S, h.L)
}

// ParseHex decodes a 6 digit hex colour, with or without a leading '#'.
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return RGB{}, fmt.Errorf("%w: %q must have exactly 6 hex digits", ErrInvalidFormat, s)
	}

	var v [3]uint8
	for i := range v {
		hi, ok1 := hexValue(digits[i*2])
		lo, ok2 := hexValue(digits[i*2+1])
		if !ok1 || !ok2 {
			return RGB{}, fmt.Errorf("%w: %q contains a non-hex digit", ErrInvalidFormat, s)
		}
		v[i] = hi<<4 | lo
	}

	return RGB{R: v[0], G: v[1], B: v[2]}, nil
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// RGBToHSL converts RGB to HSL, rounding each component to the nearest integer.
// Greys have no defined hue and report H=0, S=0.
func RGBToHSL(c RGB) HSL {
	h, s, l := rgbToHSL(c)

	hue := int(math.Round(h * 360))
	if hue == 360 {
		hue = 0
	}

	return HSL{
		H: hue,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

// rgbToHSL returns hue as a fraction of a turn, saturation and lightness, all in [0, 1].
func rgbToHSL(c RGB) (h, s, l float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	l = (maxVal + minVal) / 2

	if maxVal == minVal {
		return 0, 0, l
	}

	d := maxVal - minVal
	if l > 0.5 {
		s = d / (2 - maxVal - minVal)
	} else {
		s = d / (maxVal + minVal)
	}

	switch maxVal {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6

	return h, s, l
}

// Format selects one textual representation of a colour.
type Format string

const (
	// FormatHex renders "#RRGGBB".
	FormatHex Format = "hex"
	// FormatRGB renders "rgb(r, g, b)".
	FormatRGB Format = "rgb"
	// FormatHSL renders "hsl(h, s%, l%)".
	FormatHSL Format = "hsl"
)

// ValidFormats returns the supported output formats.
func ValidFormats() []Format {
	return []Format{FormatHex, FormatRGB, FormatHSL}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range ValidFormats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %s (valid formats: %v)", s, ValidFormats())
}

// Format renders the colour in the requested format.
// Unknown formats fall back to hex.
func (c RGB) Format(f Format) string {
	switch f {
	case FormatRGB:
		return c.String()
	case FormatHSL:
		return c.HSL().String()
	default:
		return c.Hex()
	}
}

// Representations holds every textual form of one colour.
type Representations struct {
	Hex string `json:"hex"`
	RGB string `json:"rgb"`
	HSL string `json:"hsl"`
}

// Formats returns all representations of c so the caller can pick one.
func Formats(c RGB) Representations {
	return Representations{
		Hex: c.Hex(),
		RGB: c.String(),
		HSL: c.HSL().String(),
	}
}
