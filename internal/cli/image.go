package cli

import (
	"context"
	"fmt"
	stdimage "image"
	"io"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/image"
	httputil "github.com/jmylchreest/pipette/internal/util/http"
	"github.com/jmylchreest/pipette/internal/util/imagecache"
)

// stdinSource names standard input as the image source, e.g. for piping a
// clipboard paste.
const stdinSource = "-"

// loadBuffer loads source and scales it to the configured display bounds.
func (a *app) loadBuffer(ctx context.Context, source string, stdin io.Reader, cache bool) (*colour.PixelBuffer, error) {
	img, err := a.loadImage(ctx, source, stdin, cache)
	if err != nil {
		return nil, err
	}

	buf := image.FitToDisplay(img, a.cfg.Display.MaxWidth, a.cfg.Display.MaxHeight)
	a.logger.Debug("image loaded",
		"source", source,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy(),
		"display_width", buf.Width(), "display_height", buf.Height())
	return buf, nil
}

func (a *app) loadImage(ctx context.Context, source string, stdin io.Reader, cache bool) (stdimage.Image, error) {
	if source == stdinSource {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read image from stdin: %w", err)
		}
		return image.DecodeBytes(data)
	}

	if err := image.ValidateImagePath(source); err != nil {
		return nil, fmt.Errorf("invalid image path: %w", err)
	}

	loader := image.NewSmartLoader().WithFetchOptions(httputil.FetchOptions{
		BlockPrivateHosts: a.cfg.Remote.BlockPrivateHosts,
	})
	if cache {
		loader = loader.WithCache(imagecache.CacheOptions{CacheDir: a.cfg.Store.CacheDir})
	}

	img, err := loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}
