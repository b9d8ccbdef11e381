package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/store"
)

func newPrefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Long: `Manage the saved preferences.

  theme        light or dark
  copy-format  the format pick prints: hex, rgb or hsl`,
	}

	var jsonOutput bool
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			prefs, err := st.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), prefs)
			}
			table := NewTable([]string{"PREFERENCE", "VALUE"})
			table.AddRow([]string{"theme", string(prefs.Theme)})
			table.AddRow([]string{"copy-format", string(prefs.CopyFormat)})
			_, err = fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return err
		},
	}
	getCmd.Flags().BoolVar(&jsonOutput, "json", false, "print preferences as JSON")

	var theme, copyFormat string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences",
		Example: `  pipette prefs set --theme dark
  pipette prefs set --copy-format hsl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !anyChanged(cmd.Flags(), "theme", "copy-format") {
				return fmt.Errorf("nothing to set: use --theme or --copy-format")
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			prefs, err := st.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("theme") {
				if prefs.Theme, err = store.ParseTheme(theme); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("copy-format") {
				if prefs.CopyFormat, err = colour.ParseFormat(copyFormat); err != nil {
					return err
				}
			}
			if err := st.SavePreferences(cmd.Context(), prefs); err != nil {
				return err
			}
			a.logger.Debug("saved preferences", "theme", prefs.Theme, "copy_format", prefs.CopyFormat)
			return nil
		},
	}
	setCmd.Flags().StringVar(&theme, "theme", "", "theme (light, dark)")
	setCmd.Flags().StringVar(&copyFormat, "copy-format", "", "copy format (hex, rgb, hsl)")

	cmd.AddCommand(getCmd, setCmd)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to convert to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
