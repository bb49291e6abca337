package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store handles persistence of raw Teeradar page files
type Store struct {
	rawDir string
}

// RawPage is the on-disk wrapper around one fetched API page. Payload is kept
// as raw JSON: the raw directory is a verbatim dump of what the API returned,
// and interpretation belongs to the consolidator.
type RawPage struct {
	FetchedAt string          `json:"fetched_at"`
	Offset    int             `json:"offset"`
	Payload   json.RawMessage `json:"payload"`
	RawFile   string          `json:"-"`
}

// New creates a new Store rooted at rawDir
func New(rawDir string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(rawDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		rawDir = filepath.Join(home, rawDir[2:])
	}

	if err := os.MkdirAll(rawDir, 0755); err != nil {
		return nil, fmt.Errorf("creating raw directory: %w", err)
	}

	return &Store{
		rawDir: rawDir,
	}, nil
}

// Dir returns the store's raw directory after expansion.
func (s *Store) Dir() string {
	return s.rawDir
}

// pageFilename returns the file name for the page at the given offset.
func pageFilename(offset int) string {
	return fmt.Sprintf("teeradar_page_%d.json", offset)
}

// SavePage wraps the payload with fetch metadata and writes it atomically to
// teeradar_page_<offset>.json. It returns the written file name.
func (s *Store) SavePage(offset int, fetchedAt time.Time, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	page := RawPage{
		FetchedAt: fetchedAt.UTC().Format(time.RFC3339),
		Offset:    offset,
		Payload:   raw,
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding page: %w", err)
	}

	name := pageFilename(offset)
	path := filepath.Join(s.rawDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("writing page: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("renaming page: %w", err)
	}

	return name, nil
}

// LoadPages reads every teeradar_page_*.json file in the raw directory and
// returns the pages sorted by offset ascending.
func (s *Store) LoadPages() ([]RawPage, error) {
	matches, err := filepath.Glob(filepath.Join(s.rawDir, "teeradar_page_*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing raw pages: %w", err)
	}

	pages := make([]RawPage, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading raw page %s: %w", filepath.Base(path), err)
		}

		var page RawPage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("parsing raw page %s: %w", filepath.Base(path), err)
		}
		page.RawFile = filepath.Base(path)
		pages = append(pages, page)
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Offset < pages[j].Offset
	})

	return pages, nil
}
