package consolidate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cbrunner/golfcities/internal/course"
	"github.com/cbrunner/golfcities/internal/logger"
	"github.com/cbrunner/golfcities/internal/storage"
	"github.com/cbrunner/golfcities/internal/teeradar"
)

// Dedupe keys supported by Consolidate.
const (
	KeyCourseID = "course_id"
	KeyName     = "name"
)

// Consolidate flattens raw Teeradar pages into course records with provenance
// metadata, coerces numeric fields, and deduplicates on dedupeKey keeping the
// most recently fetched record. The result is sorted by the dedupe key so
// identical inputs always produce identical tables.
func Consolidate(pages []storage.RawPage, dedupeKey string) ([]course.Course, error) {
	if dedupeKey != KeyCourseID && dedupeKey != KeyName {
		return nil, fmt.Errorf("%w: unsupported dedupe key %q (use %s or %s)",
			course.ErrConfig, dedupeKey, KeyCourseID, KeyName)
	}

	var rows []course.Course
	for _, page := range pages {
		var p teeradar.Page
		if err := json.Unmarshal(page.Payload, &p); err != nil {
			return nil, fmt.Errorf("parsing payload of %s: %w", page.RawFile, err)
		}

		for _, ci := range p.Courses {
			rows = append(rows, flatten(ci, page))
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: raw pages contain no courses", course.ErrNoData)
	}

	return dedupe(rows, dedupeKey), nil
}

// flatten maps one API course onto a table row, attaching the page's fetch
// provenance.
func flatten(ci teeradar.CourseInfo, page storage.RawPage) course.Course {
	return course.Course{
		CourseID:     ci.CourseID,
		Name:         ci.Name,
		City:         ci.City,
		State:        ci.State,
		Country:      ci.Country,
		Latitude:     ci.Latitude.Ptr(),
		Longitude:    ci.Longitude.Ptr(),
		LengthYards:  ci.LengthYards.Ptr(),
		Holes:        ci.Holes.Ptr(),
		Access:       ci.Access,
		Rating:       ci.Rating.Ptr(),
		RatingsCount: ci.RatingsCount.Or(0),
		TeeFee:       ci.TeeFee.Ptr(),
		FetchedAt:    page.FetchedAt,
		Offset:       page.Offset,
		RawFile:      page.RawFile,
	}
}

func keyOf(c course.Course, dedupeKey string) string {
	if dedupeKey == KeyName {
		return c.Name
	}
	return c.CourseID
}

// dedupe keeps, per key, the record with the latest _fetched_at (RFC3339
// timestamps order lexicographically). Records with an empty key are kept
// as-is and logged as a data-quality observation.
func dedupe(rows []course.Course, dedupeKey string) []course.Course {
	latest := make(map[string]course.Course)
	var keyless []course.Course

	for _, row := range rows {
		key := keyOf(row, dedupeKey)
		if key == "" {
			keyless = append(keyless, row)
			continue
		}
		prev, seen := latest[key]
		if !seen || row.FetchedAt >= prev.FetchedAt {
			latest[key] = row
		}
	}

	if len(keyless) > 0 {
		logger.Warn("courses without dedupe key kept verbatim", logger.Fields{
			"dedupe_key": dedupeKey,
			"rows":       len(keyless),
		})
	}

	out := make([]course.Course, 0, len(latest)+len(keyless))
	for _, row := range latest {
		out = append(out, row)
	}
	out = append(out, keyless...)

	sort.Slice(out, func(i, j int) bool {
		ki, kj := keyOf(out[i], dedupeKey), keyOf(out[j], dedupeKey)
		if ki != kj {
			return ki < kj
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Name < out[j].Name
	})

	return out
}
