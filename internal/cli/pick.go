package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/history"
	"github.com/jmylchreest/pipette/internal/sampler"
	"github.com/jmylchreest/pipette/internal/session"
)

// pointOptions locates a pixel in display coordinates.
type pointOptions struct {
	x, y          float64
	displayWidth  float64
	displayHeight float64
	dpr           float64
	clamp         bool
}

func (o *pointOptions) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&o.x, "x", "x", 0, "x coordinate")
	cmd.Flags().Float64VarP(&o.y, "y", "y", 0, "y coordinate")
	cmd.Flags().Float64Var(&o.displayWidth, "display-width", 0, "width the image is displayed at (coordinates are scaled to the image)")
	cmd.Flags().Float64Var(&o.displayHeight, "display-height", 0, "height the image is displayed at")
	cmd.Flags().Float64Var(&o.dpr, "dpr", 0, "device pixel ratio of a screen capture (coordinates are CSS pixels)")
	cmd.Flags().BoolVar(&o.clamp, "clamp", false, "move points outside the image to the nearest edge pixel instead of failing")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	cmd.MarkFlagsRequiredTogether("display-width", "display-height")
	cmd.MarkFlagsMutuallyExclusive("display-width", "dpr")
}

// locate returns the point and the mapping from its coordinates to buf.
// With --clamp the point is mapped and clamped up front.
func (o *pointOptions) locate(buf *colour.PixelBuffer) (sampler.Point, sampler.Scale, error) {
	p := sampler.Point{X: o.x, Y: o.y}

	var scale sampler.Scale
	switch {
	case o.dpr != 0:
		scale = sampler.DeviceScale(o.dpr)
	case o.displayWidth != 0 || o.displayHeight != 0:
		s, err := sampler.DisplayScale(buf, o.displayWidth, o.displayHeight)
		if err != nil {
			return p, s, err
		}
		scale = s
	default:
		scale = sampler.Identity
	}

	if o.clamp {
		at := sampler.Clamp(buf, scale.Map(p))
		return sampler.Point{X: float64(at.X), Y: float64(at.Y)}, sampler.Identity, nil
	}
	return p, scale, nil
}

// pickOptions holds the pick command flags.
type pickOptions struct {
	pointOptions
	format   string
	all      bool
	noRecord bool
	cache    bool
}

func newPickCmd(a *app) *cobra.Command {
	opts := &pickOptions{}

	cmd := &cobra.Command{
		Use:   "pick <image>",
		Short: "Pick the colour of one pixel",
		Long: `Sample the colour at a point of an image and add it to the history.

Coordinates are in the image as displayed: by default the image scaled to fit
the display bounds. Use --display-width/--display-height when the point comes
from an element showing the image at another size, or --dpr when it comes
from a screen capture taken at a device pixel ratio.

The colour is printed in the copy format preference unless --format or --all
is given.

Examples:
  pipette pick -x 120 -y 45 photo.jpg
  pipette pick -x 60 -y 40 --display-width 400 --display-height 250 photo.jpg
  pipette pick -x 300 -y 200 --dpr 2 --all capture.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPick(cmd, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (hex, rgb, hsl); default is the copy format preference")
	cmd.Flags().BoolVar(&opts.all, "all", false, "print every format as JSON")
	cmd.Flags().BoolVar(&opts.noRecord, "no-record", false, "do not add the colour to the history")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "cache images downloaded from URLs")

	return cmd
}

func (a *app) runPick(cmd *cobra.Command, source string, opts *pickOptions) error {
	if err := a.validate(); err != nil {
		return err
	}

	buf, err := a.loadBuffer(cmd.Context(), source, cmd.InOrStdin(), opts.cache)
	if err != nil {
		return err
	}
	p, scale, err := opts.locate(buf)
	if err != nil {
		return err
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sessionOpts := []session.Option{
		session.WithoutPalette(),
		session.WithLogger(a.logger),
	}
	if !opts.noRecord {
		sessionOpts = append(sessionOpts, session.WithRecorder(history.NewRecorder(st, a.logger)))
	}
	s := session.New(sessionOpts...)
	if err := s.Load(buf); err != nil {
		return err
	}

	c, err := s.Pick(cmd.Context(), p, scale)
	switch {
	case errors.Is(err, session.ErrNotRecorded):
		a.logger.Warn("colour picked but history not saved", "error", err)
	case err != nil:
		return fmt.Errorf("failed to pick colour: %w", err)
	}

	if opts.all {
		return writeJSON(cmd.OutOrStdout(), colour.Formats(c))
	}

	format := colour.Format(strings.ToLower(opts.format))
	if opts.format == "" {
		prefs, err := st.Preferences(cmd.Context())
		if err != nil {
			return err
		}
		format = prefs.CopyFormat
	} else if _, err := colour.ParseFormat(opts.format); err != nil {
		return err
	}

	return writeColour(cmd.OutOrStdout(), c, format)
}

// writeColour prints c in format, with a swatch on colour terminals.
func writeColour(w io.Writer, c colour.RGB, format colour.Format) error {
	text := c.Format(format)
	if colour.SupportsANSIColours() {
		text = colour.ColourPreviewWithText(c, text, len(text)+2)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

