package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cbrunner/golfcities/internal/metrics"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RankResult contains the ranked cities to be output
type RankResult struct {
	RankedAt  time.Time             `json:"ranked_at"`
	CityCount int                   `json:"city_count"`
	Cities    []metrics.CityMetrics `json:"cities"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *RankResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *RankResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs the top cities as a plain-text table
func writeText(w io.Writer, result *RankResult) error {
	if len(result.Cities) == 0 {
		fmt.Fprintln(w, "No cities ranked.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCITY\tSTATE\tSCORE\tCOURSES\tAVG RATING\tMEDIAN FEE")
	for _, c := range result.Cities {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%d\t%.2f\t%.2f\n",
			c.Rank, c.City, c.State, c.Score, c.NumGolfCourses, c.AvgRating, c.MedianTeeFee)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nShowing %d of %d cities\n", len(result.Cities), result.CityCount)
	return nil
}
