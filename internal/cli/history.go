package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or change the colour history",
		Long: fmt.Sprintf(`Manage the history of picked colours.

The history keeps the %d most recent unique colours, newest first.`, history.MaxEntries),
	}

	var jsonOutput bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRecorder(func(r *history.Recorder) error {
				list, err := r.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), list.Entries())
				}
				if list.Len() == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No colours in history")
					return nil
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), historyTable(list).Render())
				return err
			})
		},
	}
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the history as a JSON array")

	addCmd := &cobra.Command{
		Use:   "add <hex>...",
		Short: "Add colours to the history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			colours := make([]colour.RGB, 0, len(args))
			for _, arg := range args {
				c, err := colour.ParseHex(arg)
				if err != nil {
					return err
				}
				colours = append(colours, c)
			}
			return a.withRecorder(func(r *history.Recorder) error {
				for _, c := range colours {
					if _, err := r.Record(cmd.Context(), c); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every colour from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRecorder(func(r *history.Recorder) error {
				if err := r.Clear(cmd.Context()); err != nil {
					return err
				}
				a.logger.Info("history cleared")
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, clearCmd)
	return cmd
}

// withRecorder opens the store for the duration of fn.
func (a *app) withRecorder(fn func(*history.Recorder) error) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(history.NewRecorder(st, a.logger))
}

func historyTable(list *history.List) *Table {
	headers := []string{"#", "HEX", "RGB", "HSL"}
	swatches := colour.SupportsANSIColours()
	if swatches {
		headers = append(headers, "")
	}

	table := NewTable(headers)
	for i, hex := range list.Entries() {
		c, err := colour.ParseHex(hex)
		if err != nil {
			continue
		}
		row := []string{strconv.Itoa(i + 1), hex, c.String(), c.HSL().String()}
		if swatches {
			// Escape codes have no width, so the swatch goes last.
			row = append(row, colour.ColourPreview(c, 4))
		}
		table.AddRow(row)
	}
	return table
}
