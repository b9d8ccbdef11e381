package colour

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"
)

// SeedMode determines how the random seed for k-means clustering is generated.
type SeedMode string

const (
	// SeedModeRandom uses a non-deterministic seed (varies each run).
	SeedModeRandom SeedMode = "random"
	// SeedModeContent derives the seed from the pixel content, so the same
	// image always yields the same palette.
	SeedModeContent SeedMode = "content"
	// SeedModeManual uses a user-provided seed value.
	SeedModeManual SeedMode = "manual"
)

// SeedConfig holds configuration for seed generation.
type SeedConfig struct {
	Mode  SeedMode
	Value int64 // only used with SeedModeManual
}

// ValidSeedModes returns a list of valid seed modes.
func ValidSeedModes() []SeedMode {
	return []SeedMode{SeedModeRandom, SeedModeContent, SeedModeManual}
}

// ParseSeedMode converts a string to a SeedMode.
func ParseSeedMode(s string) (SeedMode, error) {
	mode := SeedMode(strings.ToLower(s))
	if slices.Contains(ValidSeedModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid modes: %v)", s, ValidSeedModes())
}

// CalculateSeed determines the seed value for buf according to config.
func CalculateSeed(buf *PixelBuffer, config SeedConfig) (int64, error) {
	switch config.Mode {
	case SeedModeRandom, "":
		return GenerateRandomSeed(), nil
	case SeedModeContent:
		if buf == nil {
			return 0, fmt.Errorf("pixel buffer is required for content-based seed mode")
		}
		return ContentSeed(buf), nil
	case SeedModeManual:
		return config.Value, nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// ContentSeed hashes the buffer dimensions and a grid of its pixels.
func ContentSeed(buf *PixelBuffer) int64 {
	hasher := sha256.New()

	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(buf.Width()))  // #nosec G115 -- dimensions are non-negative
	binary.LittleEndian.PutUint32(dims[4:8], uint32(buf.Height())) // #nosec G115
	hasher.Write(dims[:])

	step := max(buf.Width()/100, buf.Height()/100, 1)
	for y := 0; y < buf.Height(); y += step {
		for x := 0; x < buf.Width(); x += step {
			c := buf.index(y*buf.Width() + x)
			hasher.Write([]byte{c.R, c.G, c.B})
		}
	}

	sum := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 -- hash conversion is safe
}

// GenerateRandomSeed generates a non-deterministic random seed.
func GenerateRandomSeed() int64 {
	// #nosec G404 -- seed generation is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}
