// Package cli provides the command-line interface for pipette.
package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/pipette/internal/config"
	"github.com/jmylchreest/pipette/internal/store"
	"github.com/jmylchreest/pipette/internal/version"
)

// app carries the state shared by every command of one invocation.
type app struct {
	verbose   bool
	quiet     bool
	storePath string

	cfg    *config.Config
	logger hclog.Logger
}

// NewRootCmd builds the pipette command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pipette",
		Short: "Pick colours and extract palettes from images",
		Long: `Pipette samples colours from images and shows them as hex, RGB and HSL.

It extracts a dominant-colour palette with k-means clustering, renders a
magnified view around any pixel, and remembers the colours you pick.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&a.storePath, "store", "", "path of the history and preference store (env: PIPETTE_STORE_PATH)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newPickCmd(a))
	rootCmd.AddCommand(newMagnifyCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newPrefsCmd(a))

	return rootCmd
}

// setup loads configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
	}
	switch {
	case a.verbose:
		cfg.Log.Level = "debug"
	case a.quiet:
		cfg.Log.Level = "error"
	}
	a.cfg = cfg

	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "pipette",
		Output: cmd.ErrOrStderr(),
		Level:  hclog.LevelFromString(cfg.Log.Level),
	})
	return nil
}

// validate checks the configuration once command flags have been applied.
func (a *app) validate() error {
	return a.cfg.Validate()
}

// openStore opens the persistent store named by the configuration.
func (a *app) openStore() (store.Store, error) {
	s, err := store.Open(a.cfg.Store.Path, a.logger.Named("store"),
		store.WithDefaultPreferences(a.cfg.DefaultPreferences()))
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", a.cfg.Store.Path, err)
	}
	return s, nil
}

// anyChanged reports whether the user set any of the named flags.
func anyChanged(fs *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
