package image

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the longest side of the thumbnail hashed by BlurHash.
// The hash is a low-resolution placeholder, so a small thumbnail gives the
// same result much faster.
const blurHashSize = 64

// BlurHash returns a 4x3 component BlurHash of img.
func BlurHash(img image.Image) (string, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return "", fmt.Errorf("cannot hash an empty image")
	}

	thumb := img
	if bounds.Dx() > blurHashSize || bounds.Dy() > blurHashSize {
		w, h := FitSize(bounds.Dx(), bounds.Dy(), blurHashSize, blurHashSize)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		thumb = dst
	}

	hash, err := blurhash.Encode(4, 3, thumb)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}
