package course

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline's failure taxonomy. Schema and
// configuration errors abort a run before any aggregation happens; ErrNoData
// signals an empty course table after validation.
var (
	ErrSchema = errors.New("schema error")
	ErrConfig = errors.New("configuration error")
	ErrNoData = errors.New("no course data")
)

// Column names of the consolidated course table.
const (
	ColCourseID     = "course_id"
	ColName         = "name"
	ColCity         = "city"
	ColState        = "state"
	ColRating       = "rating"
	ColRatingsCount = "ratings_count"
	ColTeeFee       = "tee_fee"
	ColLengthYards  = "length_yards"
)

// Course is one row of the consolidated course table: one golf facility with
// identifying fields, descriptive attributes, an optional rating, and
// provenance metadata attached by the consolidator. Nullable numeric columns
// are pointers so a missing value survives CSV/NDJSON/Parquet round-trips.
type Course struct {
	CourseID     string   `json:"course_id" csv:"course_id" parquet:"course_id"`
	Name         string   `json:"name" csv:"name" parquet:"name"`
	City         string   `json:"city" csv:"city" parquet:"city"`
	State        string   `json:"state" csv:"state" parquet:"state"`
	Country      string   `json:"country,omitempty" csv:"country" parquet:"country"`
	Latitude     *float64 `json:"latitude,omitempty" csv:"latitude" parquet:"latitude,optional"`
	Longitude    *float64 `json:"longitude,omitempty" csv:"longitude" parquet:"longitude,optional"`
	LengthYards  *float64 `json:"length_yards,omitempty" csv:"length_yards" parquet:"length_yards,optional"`
	Holes        *int     `json:"holes,omitempty" csv:"holes" parquet:"holes,optional"`
	Access       string   `json:"access,omitempty" csv:"access" parquet:"access"`
	Rating       *float64 `json:"rating,omitempty" csv:"rating" parquet:"rating,optional"`
	RatingsCount int      `json:"ratings_count" csv:"ratings_count" parquet:"ratings_count"`
	TeeFee       *float64 `json:"tee_fee,omitempty" csv:"tee_fee" parquet:"tee_fee,optional"`
	FetchedAt    string   `json:"_fetched_at,omitempty" csv:"_fetched_at" parquet:"_fetched_at"`
	Offset       int      `json:"_offset" csv:"_offset" parquet:"_offset"`
	RawFile      string   `json:"_raw_file,omitempty" csv:"_raw_file" parquet:"_raw_file"`
}

// Rated reports whether the course carries a rating.
func (c Course) Rated() bool {
	return c.Rating != nil
}

// StateGolfability is one row of the optional per-state table: a state code
// and a binary year-round golf suitability indicator.
type StateGolfability struct {
	State             string `json:"state" csv:"state"`
	GolfableYearRound int    `json:"golfable_year_round" csv:"golfable_year_round"`
}

// Columns is the set of column names observed in an input table. Feature
// availability and schema validation are decided from it, so readers must
// report the columns the file actually declares, not the struct fields.
type Columns map[string]bool

// Has reports whether the column was present in the input.
func (c Columns) Has(name string) bool {
	return c[name]
}

// Validate fails with a schema error naming the first required column that is
// absent from the input table.
func (c Columns) Validate(required ...string) error {
	for _, name := range required {
		if !c.Has(name) {
			return fmt.Errorf("%w: course table is missing required column %q", ErrSchema, name)
		}
	}
	return nil
}
