package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbrunner/golfcities/internal/course"
	"github.com/cbrunner/golfcities/internal/logger"
	"github.com/cbrunner/golfcities/internal/metrics"
	"github.com/cbrunner/golfcities/internal/table"
)

var (
	flagRankCourses   string
	flagRankStates    string
	flagRankWeights   string
	flagRankOverrides []string
	flagRankOutput    string
	flagRankCSV       string
	flagRankTop       int
	flagRankFormat    string
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Aggregate courses to cities and rank them by weighted score",
		Long: `Aggregates the consolidated course table to one row per (city, state),
min-max normalizes the available features, applies the weight configuration,
and writes the ranked city table. Weights come from the built-in defaults,
overridden by --weights and then by any --weight flags.`,
		RunE: runRank,
	}

	cmd.Flags().StringVar(&flagRankCourses, "courses", "", "Consolidated course table (.parquet, .csv or .ndjson) (required)")
	cmd.Flags().StringVar(&flagRankStates, "state-golfable", "", "CSV of per-state year-round golfability (optional)")
	cmd.Flags().StringVar(&flagRankWeights, "weights", "", "JSON file mapping feature name to weight (optional)")
	cmd.Flags().StringArrayVar(&flagRankOverrides, "weight", nil, "Inline weight override, feature=value (repeatable)")
	cmd.Flags().StringVar(&flagRankOutput, "output", "data/processed/city_golf_metrics.parquet", "Parquet output path (empty to skip)")
	cmd.Flags().StringVar(&flagRankCSV, "csv-out", "outputs/city_golf_metrics.csv", "CSV output path (empty to skip)")
	cmd.Flags().IntVar(&flagRankTop, "top", 10, "Number of top cities to print")
	cmd.Flags().StringVar(&flagRankFormat, "format", "text", "Output format: text or json")

	cmd.MarkFlagRequired("courses")

	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagRankFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("%w: invalid format: %s (must be 'text' or 'json')", course.ErrConfig, flagRankFormat)
	}

	weights, err := gatherWeights()
	if err != nil {
		return err
	}

	// Weight configuration is validated before any input table is read so
	// that a bad weight never costs a table load.
	hasStates := flagRankStates != ""
	if err := weights.Validate(hasStates); err != nil {
		return err
	}

	courses, cols, err := table.ReadCourses(flagRankCourses)
	if err != nil {
		return fmt.Errorf("reading course table: %w", err)
	}

	var states map[string]int
	if hasStates {
		states, err = table.ReadGolfability(flagRankStates)
		if err != nil {
			return fmt.Errorf("reading state golfability table: %w", err)
		}
	}

	cities, err := metrics.Compute(courses, cols, states, weights, logger.Default())
	if err != nil {
		return err
	}

	if flagRankOutput != "" {
		if err := table.WriteParquet(flagRankOutput, cities); err != nil {
			return fmt.Errorf("writing parquet: %w", err)
		}
	}
	if flagRankCSV != "" {
		if err := table.WriteCSV(flagRankCSV, cities); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}

	result := &RankResult{
		RankedAt:  time.Now().UTC(),
		CityCount: len(cities),
		Cities:    topCities(cities, flagRankTop),
	}
	if err := WriteOutput(os.Stdout, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// gatherWeights merges the weights file with the inline --weight overrides.
// An empty result means the built-in defaults apply unchanged.
func gatherWeights() (metrics.Weights, error) {
	weights := metrics.Weights{}

	if flagRankWeights != "" {
		loaded, err := metrics.LoadWeights(flagRankWeights)
		if err != nil {
			return nil, err
		}
		weights = loaded
	}

	for _, entry := range flagRankOverrides {
		name, value, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: malformed --weight %q (expected feature=value)", course.ErrConfig, entry)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric weight for %s: %q", course.ErrConfig, name, value)
		}
		weights[name] = f
	}

	return weights, nil
}

func topCities(cities []metrics.CityMetrics, top int) []metrics.CityMetrics {
	if top <= 0 || top >= len(cities) {
		return cities
	}
	return cities[:top]
}
