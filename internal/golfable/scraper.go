package golfable

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cbrunner/golfcities/internal/course"
	"github.com/cbrunner/golfcities/internal/logger"
)

const (
	UserAgent = "golfcities-cli/1.0 (github.com/cbrunner/golfcities)"
	Timeout   = 30 * time.Second
)

// Scraper fetches and parses an HTML reference table of per-state year-round
// golfability into the two-column state table consumed by the rank command.
type Scraper struct {
	client *http.Client
	url    string
}

// New creates a new Scraper for the given page URL
func New(url string) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url: url,
	}
}

// FetchStates fetches the page and parses its golfability table
func (s *Scraper) FetchStates() ([]course.StateGolfability, error) {
	req, err := http.NewRequest("GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return s.parseStates(resp.Body)
}

// parseStates extracts state golfability rows from HTML. It scans every table
// on the page for a header with a state column and a golfability column, and
// parses the first table that has both.
func (s *Scraper) parseStates(r io.Reader) ([]course.StateGolfability, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var states []course.StateGolfability

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		stateIdx, golfIdx := headerColumns(table)
		if stateIdx < 0 || golfIdx < 0 {
			return true // not the table we want, keep looking
		}

		seen := make(map[string]bool)
		table.Find("tr").Each(func(j int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= stateIdx || cells.Length() <= golfIdx {
				return
			}

			state := strings.ToUpper(strings.TrimSpace(cells.Eq(stateIdx).Text()))
			if state == "" || seen[state] {
				return
			}

			indicator, ok := parseIndicator(cells.Eq(golfIdx).Text())
			if !ok {
				logger.Warn("skipping row with unrecognized golfability value", logger.Fields{
					"state": state,
					"value": strings.TrimSpace(cells.Eq(golfIdx).Text()),
				})
				return
			}

			seen[state] = true
			states = append(states, course.StateGolfability{
				State:             state,
				GolfableYearRound: indicator,
			})
		})

		return false // parsed a matching table, stop
	})

	if len(states) == 0 {
		return nil, fmt.Errorf("no state golfability table found at %s", s.url)
	}

	return states, nil
}

// headerColumns locates the state and golfability column indexes in a table's
// header row, or (-1, -1) when the table doesn't match.
func headerColumns(table *goquery.Selection) (stateIdx, golfIdx int) {
	stateIdx, golfIdx = -1, -1

	header := table.Find("tr").First()
	cells := header.Find("th")
	if cells.Length() == 0 {
		cells = header.Find("td")
	}

	cells.Each(func(i int, cell *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(cell.Text()))
		switch {
		case name == "state" || name == "state code":
			if stateIdx < 0 {
				stateIdx = i
			}
		case strings.Contains(name, "golfable") || strings.Contains(strings.ReplaceAll(name, "-", " "), "year round"):
			if golfIdx < 0 {
				golfIdx = i
			}
		}
	})

	return stateIdx, golfIdx
}

// parseIndicator coerces common boolean spellings to the 0/1 indicator.
func parseIndicator(text string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "yes", "y", "true":
		return 1, true
	case "0", "no", "n", "false":
		return 0, true
	default:
		return 0, false
	}
}
