package colour

import "errors"

var (
	// ErrInvalidFormat is returned when a hex colour string cannot be decoded.
	ErrInvalidFormat = errors.New("invalid colour format")

	// ErrOutOfBounds is returned when a sample point falls outside a pixel buffer.
	ErrOutOfBounds = errors.New("point out of bounds")

	// ErrEmptyInput is returned when clustering has no sampled pixels to work with.
	ErrEmptyInput = errors.New("no pixels to sample")
)
