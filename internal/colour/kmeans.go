package colour

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	// sampleStride is the pixel step used when subsampling a buffer.
	sampleStride = 10

	// kmeansIterations is the fixed number of assign/update rounds.
	kmeansIterations = 10
)

// KMeansExtractor implements colour extraction using k-means clustering.
// An extractor owns its random source and is not safe for concurrent use;
// create one per goroutine.
type KMeansExtractor struct {
	rng *rand.Rand
}

// Option configures a KMeansExtractor.
type Option func(*KMeansExtractor)

// WithRand sets the random source used to pick initial centroids.
func WithRand(rng *rand.Rand) Option {
	return func(e *KMeansExtractor) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithSeed seeds the random source used to pick initial centroids.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed))) // #nosec G404 -- centroid seeding does not need crypto randomness
}

// NewKMeansExtractor creates a new KMeansExtractor. Without options the
// random source is seeded non-deterministically.
func NewKMeansExtractor(opts ...Option) *KMeansExtractor {
	e := &KMeansExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(GenerateRandomSeed())) // #nosec G404
	}
	return e
}

// Extract returns count representative colours of buf in centroid order.
// The colours are not sorted by prominence; Palette.Weights carries the
// share of sampled pixels in each cluster.
func (e *KMeansExtractor) Extract(buf *PixelBuffer, count int) (*Palette, error) {
	if buf == nil {
		return nil, fmt.Errorf("pixel buffer cannot be nil")
	}
	if err := ValidateColourCount(count); err != nil {
		return nil, err
	}

	points := samplePixels(buf)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %dx%d buffer", ErrEmptyInput, buf.Width(), buf.Height())
	}

	centroids, weights := e.kmeans(points, count)

	colours := make([]RGB, len(centroids))
	for i, c := range centroids {
		colours[i] = c.rgb()
	}

	return NewPaletteWithWeights(colours, weights), nil
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func (p point3D) rgb() RGB {
	return RGB{R: roundChannel(p.R), G: roundChannel(p.G), B: roundChannel(p.B)}
}

func roundChannel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// samplePixels takes every sampleStride-th pixel of buf in row-major order.
func samplePixels(buf *PixelBuffer) []point3D {
	n := buf.Len()
	points := make([]point3D, 0, (n+sampleStride-1)/sampleStride)
	for i := 0; i < n; i += sampleStride {
		c := buf.index(i)
		points = append(points, point3D{R: float64(c.R), G: float64(c.G), B: float64(c.B)})
	}
	return points
}

// kmeans clusters points into k groups over a fixed number of rounds.
// Returns centroids and their weights (share of points in the last assignment).
func (e *KMeansExtractor) kmeans(points []point3D, k int) ([]point3D, []float64) {
	centroids := make([]point3D, k)
	for i := range centroids {
		centroids[i] = points[e.rng.Intn(len(points))]
	}
	return refine(points, centroids, kmeansIterations)
}

// refine runs rounds of assign/update starting from centroids.
func refine(points []point3D, centroids []point3D, rounds int) ([]point3D, []float64) {
	k := len(centroids)
	counts := make([]int, k)
	for range rounds {
		sums := make([]point3D, k)
		clear(counts)

		for _, p := range points {
			c := findNearestCentroid(p, centroids)
			sums[c].R += p.R
			sums[c].G += p.G
			sums[c].B += p.B
			counts[c]++
		}

		next := make([]point3D, k)
		for i := range k {
			if counts[i] == 0 {
				// An empty cluster collapses onto centroid 0 as it stood
				// before this update.
				next[i] = centroids[0]
				continue
			}
			n := float64(counts[i])
			next[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
		}
		centroids = next
	}

	weights := make([]float64, k)
	total := float64(len(points))
	for i, c := range counts {
		weights[i] = float64(c) / total
	}

	return centroids, weights
}

// findNearestCentroid returns the index of the closest centroid.
// Ties go to the lowest index.
func findNearestCentroid(p point3D, centroids []point3D) int {
	minDist := math.Inf(1)
	nearest := 0
	for i, c := range centroids {
		if d := p.distance(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}
