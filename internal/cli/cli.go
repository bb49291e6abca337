package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbrunner/golfcities/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var flagVerbose bool

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "golfcities",
		Short: "Fetch, consolidate and rank US golf course data by city",
		Long: `A CLI tool that fetches golf course data from the Teeradar API,
consolidates the raw pages into a deduplicated course table, and ranks
US cities by a weighted composite of city-level golf metrics.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newConsolidateCmd())
	cmd.AddCommand(newRankCmd())
	cmd.AddCommand(newGolfableCmd())

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
