package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/image"
	"github.com/jmylchreest/pipette/internal/session"
	"github.com/jmylchreest/pipette/internal/watch"
)

// extractOptions holds the extract command flags.
type extractOptions struct {
	colours  int
	format   string
	output   string
	preview  bool
	seedMode string
	seed     int64
	blurHash bool
	watch    bool
	cache    bool
}

func newExtractCmd(a *app) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract a colour palette from an image",
		Long: `Extract the dominant colours of an image with k-means clustering.

The image is first scaled to fit the display bounds (800x500 by default),
then every tenth pixel is clustered. The palette is printed in centroid
order.

The image may be a file path, an http(s) URL, a data: URL, or "-" to read
encoded image bytes from stdin.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract 8 colours (default) from an image
  pipette extract photo.jpg

  # Extract 12 colours as HSL with terminal swatches
  pipette extract -c 12 -f hsl --preview photo.jpg

  # JSON with weights and a BlurHash placeholder
  pipette extract -f json --blurhash photo.jpg

  # Re-extract whenever the file is saved
  pipette extract --watch design.png

  # Paste from the clipboard
  wl-paste | pipette extract -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.colours, "colours", "c", colour.DefaultColours,
		fmt.Sprintf("number of colours to extract (%d-%d)", colour.MinColours, colour.MaxColours))
	cmd.Flags().StringVarP(&opts.format, "format", "f", "hex", "output format (hex, rgb, hsl, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")
	cmd.Flags().StringVar(&opts.seedMode, "seed-mode", string(colour.SeedModeContent), "k-means seed mode (content, manual, random)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed value for --seed-mode manual")
	cmd.Flags().BoolVar(&opts.blurHash, "blurhash", false, "include a BlurHash of the image in JSON output")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-extract when the image file changes")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "cache images downloaded from URLs")

	return cmd
}

// applyExtractFlags overrides the configuration with flags the user set.
func (a *app) applyExtractFlags(cmd *cobra.Command, opts *extractOptions) error {
	flags := cmd.Flags()
	if flags.Changed("colours") {
		a.cfg.Palette.Size = opts.colours
	}
	if flags.Changed("format") {
		a.cfg.Output.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("preview") {
		a.cfg.Output.Preview = opts.preview
	}
	if flags.Changed("seed-mode") {
		a.cfg.Palette.SeedMode = strings.ToLower(opts.seedMode)
	}
	if flags.Changed("seed") {
		a.cfg.Palette.Seed = opts.seed
		if !anyChanged(flags, "seed-mode") {
			a.cfg.Palette.SeedMode = string(colour.SeedModeManual)
		}
	}
	return a.validate()
}

func (a *app) runExtract(cmd *cobra.Command, source string, opts *extractOptions) error {
	if err := a.applyExtractFlags(cmd, opts); err != nil {
		return err
	}
	if opts.watch && (source == stdinSource || !isLocalPath(source)) {
		return fmt.Errorf("--watch requires a local image file")
	}

	extractOnce := func(ctx context.Context) error {
		out, err := a.extractPalette(ctx, source, cmd.InOrStdin(), opts)
		if err != nil {
			return err
		}
		return a.writeOutput(cmd.OutOrStdout(), opts.output, out)
	}

	if !opts.watch {
		return extractOnce(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(source, watch.Options{Logger: a.logger.Named("watch")})
	if err != nil {
		return err
	}
	if err := extractOnce(ctx); err != nil {
		return err
	}

	a.logger.Info("watching for changes", "path", source)
	return w.Run(ctx, func() {
		if err := extractOnce(ctx); err != nil {
			// The file may be mid-write or briefly invalid; keep watching.
			a.logger.Error("extraction failed", "path", source, "error", err)
		}
	})
}

// extractPalette loads source and returns the formatted palette.
func (a *app) extractPalette(ctx context.Context, source string, stdin io.Reader, opts *extractOptions) (string, error) {
	buf, err := a.loadBuffer(ctx, source, stdin, opts.cache)
	if err != nil {
		return "", err
	}

	s := session.New(
		session.WithPaletteSize(a.cfg.Palette.Size),
		session.WithSeed(a.cfg.SeedConfig()),
		session.WithLogger(a.logger),
	)
	if err := s.Load(buf); err != nil {
		return "", fmt.Errorf("failed to extract colours: %w", err)
	}
	palette := s.Palette()
	a.logger.Debug("extracted palette", "colours", palette.Len())

	var hash string
	if opts.blurHash {
		hash, err = image.BlurHash(buf)
		if err != nil {
			return "", err
		}
	}

	return formatPalette(palette, a.cfg.Output.Format, a.cfg.Output.Preview, hash)
}

// writeOutput writes out to path, or to w when path is empty.
func (a *app) writeOutput(w io.Writer, path, out string) error {
	if path == "" {
		_, err := io.WriteString(w, out)
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil { // #nosec G306 - palette output is not sensitive
		return fmt.Errorf("failed to write output file: %w", err)
	}
	a.logger.Info("wrote palette", "path", path)
	return nil
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool, blurHash string) (string, error) {
	if format == "json" {
		out := palette.JSON()
		out.BlurHash = blurHash
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	}

	f, err := colour.ParseFormat(format)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, c := range palette.All() {
		if showPreview && colour.SupportsANSIColours() {
			sb.WriteString(colour.ColourPreview(c, 8))
			sb.WriteString(" ")
		}
		sb.WriteString(c.Format(f))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func isLocalPath(source string) bool {
	return !strings.HasPrefix(source, "http://") &&
		!strings.HasPrefix(source, "https://") &&
		!strings.HasPrefix(source, "data:")
}
