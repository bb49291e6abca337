package teeradar

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultBaseURL = "http://teeradar.online"
	CoursesPath    = "/api/v1/courses.php"
	UserAgent      = "golfcities-cli/1.0 (github.com/cbrunner/golfcities)"
	Timeout        = 15 * time.Second

	// maxRetries bounds the backoff loop for transient failures (429, 5xx,
	// transport errors).
	maxRetries = 8
)

// Client is a client for the Teeradar courses API
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	retryInterval time.Duration
}

// New creates a new Teeradar API client
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: Timeout,
		},
		retryInterval: 500 * time.Millisecond,
	}
}

// NewWithBaseURL creates a client against a non-default base URL
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Page represents one page of the API course listing. Raw holds the payload
// exactly as the API returned it (fields the CourseInfo struct doesn't know
// about included), with only the country filter applied; it is what the raw
// archive stores, so re-consolidation never loses data the API added later.
type Page struct {
	Courses []CourseInfo `json:"courses"`
	Count   *int         `json:"count,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// EffectiveCount returns the page's course count, falling back to the number
// of returned courses when the API omits the count field.
func (p *Page) EffectiveCount() int {
	if p.Count != nil {
		return *p.Count
	}
	return len(p.Courses)
}

// FetchOptions controls pagination of FetchAll
type FetchOptions struct {
	MinRating *float64
	Limit     int // page size; defaults to 100
	Offset    int // starting offset
	MaxPages  int // stop after this many pages; 0 means no limit
}

// FetchPage fetches a single page of United States courses at the given
// offset. HTTP 429, 5xx and transport errors are retried with exponential
// backoff; any other non-200 status fails immediately.
func (c *Client) FetchPage(offset, limit int, minRating *float64) (*Page, error) {
	params := url.Values{}
	params.Set("country", "United States")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if minRating != nil {
		params.Set("min_rating", strconv.FormatFloat(*minRating, 'f', -1, 64))
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, CoursesPath, params.Encode())

	var page Page
	operation := func() error {
		req, err := http.NewRequest("GET", reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("User-Agent", UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("transient status %d at offset %d", resp.StatusCode, offset)
		default:
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		page = Page{}
		if err := json.Unmarshal(body, &page); err != nil {
			return backoff.Permanent(fmt.Errorf("parsing response: %w", err))
		}
		page.Raw = body
		return nil
	}

	if err := backoff.Retry(operation, c.newBackOff()); err != nil {
		return nil, err
	}

	if err := page.filterUnitedStates(); err != nil {
		return nil, fmt.Errorf("filtering page at offset %d: %w", offset, err)
	}
	return &page, nil
}

// FetchAll walks the paginated course listing, invoking handle for every
// fetched page. It stops when a page reports fewer courses than the page
// size, or after MaxPages pages. It returns the number of pages fetched.
func (c *Client) FetchAll(opts FetchOptions, handle func(offset int, page *Page) error) (int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset

	pages := 0
	for {
		page, err := c.FetchPage(offset, limit, opts.MinRating)
		if err != nil {
			return pages, err
		}

		if err := handle(offset, page); err != nil {
			return pages, err
		}
		pages++

		// count < limit means the API has no further pages
		if page.EffectiveCount() < limit {
			return pages, nil
		}
		if opts.MaxPages > 0 && pages >= opts.MaxPages {
			return pages, nil
		}
		offset += limit
	}
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	return backoff.WithMaxRetries(b, maxRetries)
}

// filterUnitedStates drops courses whose country field does not look like the
// United States. The API is asked for US courses already; this guards against
// stray rows leaking into the raw pages. The decoded courses and the raw
// payload are filtered in lockstep so the archived page keeps every field the
// API returned; when nothing is dropped the raw bytes stay untouched.
func (p *Page) filterUnitedStates() error {
	kept := make([]CourseInfo, 0, len(p.Courses))
	keep := make([]bool, len(p.Courses))
	for i, ci := range p.Courses {
		if isUnitedStates(ci.Country) {
			kept = append(kept, ci)
			keep[i] = true
		}
	}
	if len(kept) == len(p.Courses) {
		p.Courses = kept
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(p.Raw, &envelope); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}
	var rawCourses []json.RawMessage
	if courses, ok := envelope["courses"]; ok {
		if err := json.Unmarshal(courses, &rawCourses); err != nil {
			return fmt.Errorf("parsing payload courses: %w", err)
		}
	}
	if len(rawCourses) != len(keep) {
		return fmt.Errorf("payload has %d courses, decoded %d", len(rawCourses), len(keep))
	}

	keptRaw := make([]json.RawMessage, 0, len(kept))
	for i, raw := range rawCourses {
		if keep[i] {
			keptRaw = append(keptRaw, raw)
		}
	}
	courses, err := json.Marshal(keptRaw)
	if err != nil {
		return fmt.Errorf("encoding filtered courses: %w", err)
	}
	envelope["courses"] = courses

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding filtered payload: %w", err)
	}

	p.Courses = kept
	p.Raw = raw
	return nil
}

func isUnitedStates(country string) bool {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "united states", "us", "usa":
		return true
	}
	return false
}
