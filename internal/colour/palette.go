package colour

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Palette is an ordered set of colours extracted from one pixel buffer.
// It is replaced, never updated, when the source image or size changes.
type Palette struct {
	Colors  []RGB
	Weights []float64
}

// NewPalette creates a new Palette with the given colours and no weights.
func NewPalette(colors []RGB) *Palette {
	return &Palette{Colors: colors}
}

// NewPaletteWithWeights creates a new Palette with per-colour weights.
func NewPaletteWithWeights(colors []RGB, weights []float64) *Palette {
	return &Palette{Colors: colors, Weights: weights}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// Weight returns the weight of the colour at index, or 0 if unknown.
func (p *Palette) Weight(index int) float64 {
	if index < 0 || index >= len(p.Weights) {
		return 0
	}
	return p.Weights[index]
}

// ToHex converts the palette colours to hex strings.
func (p *Palette) ToHex() []string {
	hex := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hex[i] = c.Hex()
	}
	return hex
}

// Get returns the colour at the specified index.
func (p *Palette) Get(index int) (RGB, error) {
	if index < 0 || index >= len(p.Colors) {
		return RGB{}, fmt.Errorf("%w: palette index %d (palette has %d colours)", ErrOutOfBounds, index, len(p.Colors))
	}
	return p.Colors[index], nil
}

// All returns an iterator over all colours in the palette.
func (p *Palette) All() func(func(int, RGB) bool) {
	return func(yield func(int, RGB) bool) {
		for i, c := range p.Colors {
			if !yield(i, c) {
				return
			}
		}
	}
}

// ColorJSON represents a colour in JSON output format.
type ColorJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	HSL    HSL     `json:"hsl"`
	Weight float64 `json:"weight,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count    int         `json:"count"`
	Colors   []ColorJSON `json:"colors"`
	BlurHash string      `json:"blurhash,omitempty"`
}

// JSON returns the palette in its JSON output shape.
func (p *Palette) JSON() PaletteJSON {
	colors := make([]ColorJSON, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = ColorJSON{
			Hex:    c.Hex(),
			RGB:    c,
			HSL:    c.HSL(),
			Weight: p.Weight(i),
		}
	}
	return PaletteJSON{Count: len(p.Colors), Colors: colors}
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.JSON(), "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colors) == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette with %d colours:\n", len(p.Colors))
	for i, c := range p.Colors {
		fmt.Fprintf(&sb, "  %2d: %s (%s)\n", i+1, c.Hex(), c.String())
	}
	return sb.String()
}
