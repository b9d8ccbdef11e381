// Package session holds the state of one picking session: the loaded image,
// the current colour and the extracted palette.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/history"
	"github.com/jmylchreest/pipette/internal/sampler"
)

// ErrNoImage is returned by operations that need a loaded image.
var ErrNoImage = errors.New("no image loaded")

// ErrNoPalette is returned by palette operations on a session created
// WithoutPalette.
var ErrNoPalette = errors.New("palette extraction disabled")

// ErrNotRecorded wraps a history failure after a colour was picked. The
// colour returned alongside it is valid.
var ErrNotRecorded = errors.New("colour not recorded")

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	buf         *colour.PixelBuffer
	current     colour.RGB
	hasCurrent  bool
	paletteSize int
	palette     *colour.Palette
	noPalette   bool

	seed     colour.SeedConfig
	recorder *history.Recorder
	logger   hclog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPaletteSize sets the initial palette size, clamped to the supported
// range.
func WithPaletteSize(n int) Option {
	return func(s *Session) {
		s.paletteSize = colour.ClampColourCount(n)
	}
}

// WithSeed sets how each extraction seeds k-means.
func WithSeed(cfg colour.SeedConfig) Option {
	return func(s *Session) {
		s.seed = cfg
	}
}

// WithoutPalette skips palette extraction on Load, for callers that only
// sample pixels. Palette stays nil and SelectPaletteEntry fails with
// ErrNoPalette.
func WithoutPalette() Option {
	return func(s *Session) {
		s.noPalette = true
	}
}

// WithRecorder records picks into history. Without one, picks are not
// recorded.
func WithRecorder(r *history.Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		paletteSize: colour.DefaultColours,
		seed:        colour.SeedConfig{Mode: colour.SeedModeContent},
		logger:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")
	return s
}

// Load replaces the image, extracts its palette and makes the centre pixel
// the current colour. The centre pixel is not recorded.
func (s *Session) Load(buf *colour.PixelBuffer) error {
	if buf.Empty() {
		return fmt.Errorf("load: %w", colour.ErrEmptyInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var palette *colour.Palette
	if !s.noPalette {
		p, err := s.extract(buf, s.paletteSize)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		palette = p
	}
	centre, err := buf.RGBAt(buf.Width()/2, buf.Height()/2)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	s.buf = buf
	s.palette = palette
	s.current = centre
	s.hasCurrent = true

	s.logger.Debug("image loaded", "width", buf.Width(), "height", buf.Height(), "centre", centre.Hex())
	return nil
}

// Buffer returns the loaded image, or nil.
func (s *Session) Buffer() *colour.PixelBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Current returns the current colour and whether there is one.
func (s *Session) Current() (colour.RGB, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// Palette returns the palette of the loaded image, or nil.
func (s *Session) Palette() *colour.Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette
}

// PaletteSize returns the number of colours extracted.
func (s *Session) PaletteSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paletteSize
}

// Pick samples the pixel under p, makes it the current colour and records
// it.
func (s *Session) Pick(ctx context.Context, p sampler.Point, scale sampler.Scale) (colour.RGB, error) {
	s.mu.Lock()
	if s.buf == nil {
		s.mu.Unlock()
		return colour.RGB{}, ErrNoImage
	}
	c, err := sampler.SampleAt(s.buf, p, scale)
	if err != nil {
		s.mu.Unlock()
		return colour.RGB{}, fmt.Errorf("pick: %w", err)
	}
	s.current = c
	s.hasCurrent = true
	s.mu.Unlock()

	s.logger.Debug("picked colour", "x", p.X, "y", p.Y, "hex", c.Hex())
	return c, s.record(ctx, c)
}

// Hover samples the pixel under p and renders the magnifier around it
// without changing the current colour.
func (s *Session) Hover(p sampler.Point, scale sampler.Scale, opts sampler.MagnifierOptions) (colour.RGB, *sampler.Magnified, error) {
	s.mu.Lock()
	buf := s.buf
	s.mu.Unlock()
	if buf == nil {
		return colour.RGB{}, nil, ErrNoImage
	}

	c, err := sampler.SampleAt(buf, p, scale)
	if err != nil {
		return colour.RGB{}, nil, fmt.Errorf("hover: %w", err)
	}
	mag, err := sampler.RenderMagnified(buf, scale.Map(p), opts)
	if err != nil {
		return colour.RGB{}, nil, fmt.Errorf("hover: %w", err)
	}
	return c, mag, nil
}

// SelectPaletteEntry makes palette entry i the current colour and records
// it.
func (s *Session) SelectPaletteEntry(ctx context.Context, i int) (colour.RGB, error) {
	s.mu.Lock()
	if s.buf == nil {
		s.mu.Unlock()
		return colour.RGB{}, ErrNoImage
	}
	if s.palette == nil {
		s.mu.Unlock()
		return colour.RGB{}, ErrNoPalette
	}
	c, err := s.palette.Get(i)
	if err != nil {
		s.mu.Unlock()
		return colour.RGB{}, err
	}
	s.current = c
	s.hasCurrent = true
	s.mu.Unlock()

	return c, s.record(ctx, c)
}

// IncreasePaletteSize extracts one more colour. At the maximum size it does
// nothing.
func (s *Session) IncreasePaletteSize() error {
	return s.stepPaletteSize(1)
}

// DecreasePaletteSize extracts one colour fewer. At the minimum size it does
// nothing.
func (s *Session) DecreasePaletteSize() error {
	return s.stepPaletteSize(-1)
}

func (s *Session) stepPaletteSize(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.paletteSize + delta
	if n < colour.MinColours || n > colour.MaxColours {
		return nil
	}
	return s.resize(n)
}

// SetPaletteSize extracts a palette of n colours.
func (s *Session) SetPaletteSize(n int) error {
	if err := colour.ValidateColourCount(n); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resize(n)
}

// resize must be called with s.mu held.
func (s *Session) resize(n int) error {
	if s.buf == nil || s.noPalette {
		s.paletteSize = n
		return nil
	}

	palette, err := s.extract(s.buf, n)
	if err != nil {
		return err
	}
	s.paletteSize = n
	s.palette = palette
	return nil
}

// Clear drops the image and its palette.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = nil
	s.palette = nil
	s.current = colour.RGB{}
	s.hasCurrent = false
	s.logger.Debug("session cleared")
}

func (s *Session) extract(buf *colour.PixelBuffer, n int) (*colour.Palette, error) {
	seed, err := colour.CalculateSeed(buf, s.seed)
	if err != nil {
		return nil, err
	}
	extractor, err := colour.NewExtractor(colour.AlgorithmKMeans, colour.WithSeed(seed))
	if err != nil {
		return nil, err
	}
	palette, err := extractor.Extract(buf, n)
	if err != nil {
		return nil, fmt.Errorf("extract palette: %w", err)
	}
	s.logger.Debug("palette extracted", "colours", n, "seed", seed)
	return palette, nil
}

func (s *Session) record(ctx context.Context, c colour.RGB) error {
	if s.recorder == nil {
		return nil
	}
	if _, err := s.recorder.Record(ctx, c); err != nil {
		s.logger.Warn("failed to record colour", "hex", c.Hex(), "error", err)
		return fmt.Errorf("%w: %w", ErrNotRecorded, err)
	}
	return nil
}

