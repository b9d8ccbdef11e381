package colour

import (
	"fmt"
)

const (
	// MinColours is the smallest palette size that can be extracted.
	MinColours = 4

	// MaxColours is the largest palette size that can be extracted.
	MaxColours = 16

	// DefaultColours is the palette size used when none is configured.
	DefaultColours = 8
)

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract extracts a palette of count colours from buf.
	Extract(buf *PixelBuffer, count int) (*Palette, error)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans uses k-means clustering for colour extraction.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmKMeans}
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm, opts ...Option) (Extractor, error) {
	switch alg {
	case AlgorithmKMeans:
		return NewKMeansExtractor(opts...), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// ExtractorConfig holds configuration for colour extraction.
type ExtractorConfig struct {
	Algorithm  Algorithm
	ColorCount int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:  AlgorithmKMeans,
		ColorCount: DefaultColours,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if _, err := NewExtractor(c.Algorithm); err != nil {
		return err
	}
	return ValidateColourCount(c.ColorCount)
}

// ValidateColourCount checks that count is within [MinColours, MaxColours].
func ValidateColourCount(count int) error {
	if count < MinColours || count > MaxColours {
		return fmt.Errorf("colour count must be between %d and %d, got %d", MinColours, MaxColours, count)
	}
	return nil
}

// ClampColourCount forces count into [MinColours, MaxColours].
func ClampColourCount(count int) int {
	return min(max(count, MinColours), MaxColours)
}
