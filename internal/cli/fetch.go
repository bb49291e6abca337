package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbrunner/golfcities/internal/config"
	"github.com/cbrunner/golfcities/internal/logger"
	"github.com/cbrunner/golfcities/internal/storage"
	"github.com/cbrunner/golfcities/internal/teeradar"
)

var (
	flagFetchOutDir     string
	flagFetchLimit      int
	flagFetchOffset     int
	flagFetchMaxPages   int
	flagFetchMinRating  float64
	flagFetchAPIKeyFile string
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch raw course pages from the Teeradar API",
		Long: `Walks the paginated Teeradar course listing for the United States and
writes each page verbatim to the raw directory as teeradar_page_<offset>.json,
wrapped with fetch metadata. Fetching stops when a page reports fewer courses
than the page size.`,
		RunE: runFetch,
	}

	cmd.Flags().StringVar(&flagFetchOutDir, "out-dir", "data/raw", "Directory for raw page files")
	cmd.Flags().IntVar(&flagFetchLimit, "limit", 100, "Page size")
	cmd.Flags().IntVar(&flagFetchOffset, "offset", 0, "Starting offset")
	cmd.Flags().IntVar(&flagFetchMaxPages, "max-pages", 0, "Stop after this many pages (0 = no limit)")
	cmd.Flags().Float64Var(&flagFetchMinRating, "min-rating", 0, "Only request courses at or above this rating")
	cmd.Flags().StringVar(&flagFetchAPIKeyFile, "api-key-file", config.DefaultAPIKeyFile, "File holding the API key when TEERADAR_API_KEY is unset")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	apiKey, err := config.LoadAPIKey(flagFetchAPIKeyFile)
	if err != nil {
		return err
	}

	store, err := storage.New(flagFetchOutDir)
	if err != nil {
		return fmt.Errorf("initializing raw store: %w", err)
	}

	opts := teeradar.FetchOptions{
		Limit:    flagFetchLimit,
		Offset:   flagFetchOffset,
		MaxPages: flagFetchMaxPages,
	}
	if cmd.Flags().Changed("min-rating") {
		minRating := flagFetchMinRating
		opts.MinRating = &minRating
	}

	client := teeradar.New(apiKey)

	courses := 0
	pages, err := client.FetchAll(opts, func(offset int, page *teeradar.Page) error {
		name, err := store.SavePage(offset, time.Now().UTC(), page.Raw)
		if err != nil {
			return fmt.Errorf("saving page at offset %d: %w", offset, err)
		}
		courses += len(page.Courses)
		logger.Info("saved raw page", logger.Fields{
			"file":    name,
			"offset":  offset,
			"courses": len(page.Courses),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetching courses: %w", err)
	}

	fmt.Printf("Fetched %d pages (%d courses) into %s\n", pages, courses, store.Dir())
	return nil
}
