// Package config builds pipette's configuration from defaults, PIPETTE_*
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/sampler"
	"github.com/jmylchreest/pipette/internal/store"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PIPETTE_"

// Config holds the application configuration.
type Config struct {
	Log       LogConfig
	Store     StoreConfig
	Palette   PaletteConfig
	Output    OutputConfig
	Magnifier MagnifierConfig
	Display   DisplayConfig
	Defaults  DefaultsConfig
	Remote    RemoteConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `validate:"oneof=trace debug info warn error off"`
}

// StoreConfig holds the location of the history and preference store.
type StoreConfig struct {
	Path     string `validate:"required"`
	CacheDir string
}

// PaletteConfig holds palette extraction settings.
type PaletteConfig struct {
	Size     int    `validate:"gte=4,lte=16"`
	SeedMode string `validate:"oneof=content manual random"`
	Seed     int64
}

// OutputConfig holds how extracted palettes are printed.
type OutputConfig struct {
	Format  string `validate:"oneof=hex rgb hsl json"`
	Preview bool
}

// MagnifierConfig holds magnifier rendering settings.
type MagnifierConfig struct {
	Zoom int `validate:"gte=1"`
	Size int `validate:"gtefield=Zoom"`
}

// DisplayConfig bounds the display-fit buffer images are sampled from.
type DisplayConfig struct {
	MaxWidth  int `validate:"gte=1"`
	MaxHeight int `validate:"gte=1"`
}

// DefaultsConfig holds the preferences used until the user saves their own.
type DefaultsConfig struct {
	Theme      string `validate:"oneof=light dark"`
	CopyFormat string `validate:"oneof=hex rgb hsl"`
}

// RemoteConfig holds settings for images fetched from URLs.
type RemoteConfig struct {
	BlockPrivateHosts bool
}

// Default returns the built-in configuration.
func Default() *Config {
	prefs := store.DefaultPreferences()
	return &Config{
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Path: defaultStorePath()},
		Palette: PaletteConfig{
			Size:     colour.DefaultColours,
			SeedMode: string(colour.SeedModeContent),
		},
		Output: OutputConfig{Format: "hex"},
		Magnifier: MagnifierConfig{
			Zoom: sampler.AppMagnifier.Zoom,
			Size: sampler.AppMagnifier.Size,
		},
		Display: DisplayConfig{MaxWidth: 800, MaxHeight: 500},
		Defaults: DefaultsConfig{
			Theme:      string(prefs.Theme),
			CopyFormat: string(prefs.CopyFormat),
		},
	}
}

// Load returns the defaults overridden by PIPETTE_* environment variables.
// Flags are applied afterwards by the caller.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with values found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	var errs []error
	setString := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: invalid integer %q", EnvPrefix, key, v))
				return
			}
			*dst = n
		}
	}

	// Accepts "true", "1" and "yes" (case-insensitive) as true.
	setBool := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			v = strings.ToLower(v)
			*dst = v == "true" || v == "1" || v == "yes"
		}
	}

	setString("LOG_LEVEL", &c.Log.Level)
	setString("STORE_PATH", &c.Store.Path)
	setString("CACHE_DIR", &c.Store.CacheDir)
	setInt("PALETTE_SIZE", &c.Palette.Size)
	setString("SEED_MODE", &c.Palette.SeedMode)
	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: invalid integer %q", EnvPrefix, v))
		} else {
			c.Palette.Seed = n
		}
	}
	setString("FORMAT", &c.Output.Format)
	setBool("PREVIEW", &c.Output.Preview)
	setBool("BLOCK_PRIVATE_HOSTS", &c.Remote.BlockPrivateHosts)
	setInt("ZOOM", &c.Magnifier.Zoom)
	setInt("MAGNIFIER_SIZE", &c.Magnifier.Size)
	setInt("DISPLAY_WIDTH", &c.Display.MaxWidth)
	setInt("DISPLAY_HEIGHT", &c.Display.MaxHeight)
	setString("THEME", &c.Defaults.Theme)
	setString("COPY_FORMAT", &c.Defaults.CopyFormat)

	return errors.Join(errs...)
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Namespace()+" "+friendlyMessage(fe))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ExtractorConfig returns the palette extractor settings.
func (c *Config) ExtractorConfig() colour.ExtractorConfig {
	return colour.ExtractorConfig{Algorithm: colour.AlgorithmKMeans, ColorCount: c.Palette.Size}
}

// SeedConfig returns the k-means seed settings.
func (c *Config) SeedConfig() colour.SeedConfig {
	return colour.SeedConfig{Mode: colour.SeedMode(c.Palette.SeedMode), Value: c.Palette.Seed}
}

// MagnifierOptions returns the app magnifier preset resized to the
// configured zoom and size.
func (c *Config) MagnifierOptions() sampler.MagnifierOptions {
	opts := sampler.AppMagnifier
	opts.Zoom = c.Magnifier.Zoom
	opts.Size = c.Magnifier.Size
	return opts
}

// DefaultPreferences returns the configured fallback preferences.
func (c *Config) DefaultPreferences() store.Preferences {
	return store.Preferences{
		Theme:      store.Theme(c.Defaults.Theme),
		CopyFormat: colour.Format(c.Defaults.CopyFormat),
	}
}

var validate = validator.New()

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gtefield":
		return "must be greater than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".pipette", "store")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pipette", "store")
}
