package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List attached displays",
	Long: `List the displays available for mirroring, with their resolved
indices, geometry and which one is primary.

Negative selectors passed to "mirror --display" count from the end of
this list.`,
	Example: `  # List displays in table format (default)
  arsmoothdesk displays

  # List displays in JSON format
  arsmoothdesk displays --format json`,
	RunE: runDisplays,
}

var displaysFormat string

func init() {
	rootCmd.AddCommand(displaysCmd)

	displaysCmd.Flags().StringVarP(&displaysFormat, "format", "f", "table", "output format (table or json)")
}

func runDisplays(cmd *cobra.Command, args []string) error {
	displays, err := capture.ListDisplays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}

	if displaysFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(displays)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tGEOMETRY\tPRIMARY")
	for _, d := range displays {
		primary := ""
		if d.Primary {
			primary = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%dx%d+%d+%d\t%s\n",
			d.Index, d.Name, d.Width, d.Height, d.X, d.Y, primary)
	}
	return w.Flush()
}
