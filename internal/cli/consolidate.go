package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbrunner/golfcities/internal/consolidate"
	"github.com/cbrunner/golfcities/internal/course"
	"github.com/cbrunner/golfcities/internal/storage"
	"github.com/cbrunner/golfcities/internal/table"
)

var (
	flagConsRawDir    string
	flagConsParquet   string
	flagConsNDJSON    string
	flagConsCSV       string
	flagConsSQLite    string
	flagConsDedupeKey string
)

func newConsolidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Flatten raw pages into a deduplicated course table",
		Long: `Reads every teeradar_page_*.json file from the raw directory, flattens
the wrapped course records with their fetch provenance, coerces numeric
fields, deduplicates on the dedupe key keeping the latest fetch, and writes
the consolidated table in the requested formats.`,
		RunE: runConsolidate,
	}

	cmd.Flags().StringVar(&flagConsRawDir, "raw-dir", "data/raw", "Directory holding raw page files")
	cmd.Flags().StringVar(&flagConsParquet, "out", "data/processed/teeradar_courses.parquet", "Parquet output path (empty to skip)")
	cmd.Flags().StringVar(&flagConsNDJSON, "ndjson-out", "", "NDJSON output path (optional)")
	cmd.Flags().StringVar(&flagConsCSV, "csv-out", "", "CSV output path (optional)")
	cmd.Flags().StringVar(&flagConsSQLite, "sqlite-db", "", "SQLite database path (optional)")
	cmd.Flags().StringVar(&flagConsDedupeKey, "dedupe-key", consolidate.KeyCourseID, "Column to deduplicate on: course_id or name")

	return cmd
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	if flagConsParquet == "" && flagConsNDJSON == "" && flagConsCSV == "" && flagConsSQLite == "" {
		return fmt.Errorf("%w: no output requested: set at least one of --out, --ndjson-out, --csv-out, --sqlite-db", course.ErrConfig)
	}

	store, err := storage.New(flagConsRawDir)
	if err != nil {
		return fmt.Errorf("opening raw store: %w", err)
	}

	pages, err := store.LoadPages()
	if err != nil {
		return fmt.Errorf("loading raw pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("%w: no raw pages found in %s", course.ErrNoData, store.Dir())
	}

	rows, err := consolidate.Consolidate(pages, flagConsDedupeKey)
	if err != nil {
		return err
	}

	if flagConsParquet != "" {
		if err := table.WriteParquet(flagConsParquet, rows); err != nil {
			return fmt.Errorf("writing parquet: %w", err)
		}
	}
	if flagConsNDJSON != "" {
		if err := table.WriteNDJSON(flagConsNDJSON, rows); err != nil {
			return fmt.Errorf("writing ndjson: %w", err)
		}
	}
	if flagConsCSV != "" {
		if err := table.WriteCSV(flagConsCSV, rows); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	if flagConsSQLite != "" {
		if err := table.WriteCoursesSQLite(flagConsSQLite, table.DefaultSQLiteTable, rows); err != nil {
			return fmt.Errorf("writing sqlite: %w", err)
		}
	}

	fmt.Printf("Consolidated %d unique courses from %d raw pages\n", len(rows), len(pages))
	return nil
}
