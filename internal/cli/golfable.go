package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbrunner/golfcities/internal/golfable"
	"github.com/cbrunner/golfcities/internal/table"
)

var (
	flagGolfableURL string
	flagGolfableOut string
)

func newGolfableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "golfable",
		Short: "Scrape a per-state year-round golfability table to CSV",
		Long: `Fetches an HTML page, finds the first table with a state column and a
golfability column, and writes the two-column CSV consumed by the rank
command's --state-golfable flag.`,
		RunE: runGolfable,
	}

	cmd.Flags().StringVar(&flagGolfableURL, "url", "", "Page containing the state golfability table (required)")
	cmd.Flags().StringVar(&flagGolfableOut, "out", "data/reference/state_golfable.csv", "CSV output path")

	cmd.MarkFlagRequired("url")

	return cmd
}

func runGolfable(cmd *cobra.Command, args []string) error {
	states, err := golfable.New(flagGolfableURL).FetchStates()
	if err != nil {
		return fmt.Errorf("scraping golfability table: %w", err)
	}

	if err := table.WriteCSV(flagGolfableOut, states); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	fmt.Printf("Wrote %d states to %s\n", len(states), flagGolfableOut)
	return nil
}
