package metrics

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/cbrunner/golfcities/internal/course"
	"github.com/cbrunner/golfcities/internal/logger"
)

func ptr(v float64) *float64 { return &v }

func quiet() *logger.Logger {
	return logger.New(logger.LevelError, io.Discard)
}

// minimalCols mimics a course table carrying only the required columns.
func minimalCols() course.Columns {
	return course.Columns{
		course.ColName:   true,
		course.ColCity:   true,
		course.ColState:  true,
		course.ColRating: true,
	}
}

func fullCols() course.Columns {
	cols := minimalCols()
	cols[course.ColRatingsCount] = true
	cols[course.ColTeeFee] = true
	cols[course.ColLengthYards] = true
	return cols
}

// workedExample is the worked example from the ranking requirements: three
// Orlando courses (4.0, 4.5, unrated) and one Scottsdale course (4.8).
func workedExample() []course.Course {
	return []course.Course{
		{Name: "Orlando A", City: "Orlando", State: "FL", Rating: ptr(4.0)},
		{Name: "Orlando B", City: "Orlando", State: "FL", Rating: ptr(4.5)},
		{Name: "Orlando C", City: "Orlando", State: "FL"},
		{Name: "Scottsdale A", City: "Scottsdale", State: "AZ", Rating: ptr(4.8)},
	}
}

func TestComputeWorkedExample(t *testing.T) {
	weights := Weights{FeatNumGolfCourses: 0.5, FeatAvgRating: 0.5}

	rows, err := Compute(workedExample(), minimalCols(), nil, weights, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(rows))
	}

	byCity := make(map[string]CityMetrics)
	for _, r := range rows {
		byCity[r.City] = r
	}

	orlando := byCity["Orlando"]
	if orlando.NumGolfCourses != 3 || orlando.RatedCourses != 2 {
		t.Errorf("Orlando aggregate wrong: %+v", orlando)
	}
	if orlando.AvgRating != 4.25 {
		t.Errorf("expected Orlando avg_rating 4.25, got %v", orlando.AvgRating)
	}
	if orlando.NormNumGolfCourses != 1.0 || orlando.NormAvgRating != 0.0 {
		t.Errorf("Orlando normalization wrong: count=%v rating=%v",
			orlando.NormNumGolfCourses, orlando.NormAvgRating)
	}

	scottsdale := byCity["Scottsdale"]
	if scottsdale.NumGolfCourses != 1 || scottsdale.AvgRating != 4.8 {
		t.Errorf("Scottsdale aggregate wrong: %+v", scottsdale)
	}
	if scottsdale.NormNumGolfCourses != 0.0 || scottsdale.NormAvgRating != 1.0 {
		t.Errorf("Scottsdale normalization wrong: count=%v rating=%v",
			scottsdale.NormNumGolfCourses, scottsdale.NormAvgRating)
	}

	// Both score 0.5: the tie breaks alphabetically.
	if orlando.Score != 0.5 || scottsdale.Score != 0.5 {
		t.Errorf("expected both scores 0.5, got %v and %v", orlando.Score, scottsdale.Score)
	}
	if orlando.Rank != 1 || scottsdale.Rank != 2 {
		t.Errorf("tie should break alphabetically: Orlando=%d Scottsdale=%d",
			orlando.Rank, scottsdale.Rank)
	}
	if rows[0].City != "Orlando" {
		t.Errorf("output should be sorted by rank ascending, got %s first", rows[0].City)
	}
}

func TestGroupingCompleteness(t *testing.T) {
	courses := []course.Course{
		{Name: "a", City: "Austin", State: "TX", Rating: ptr(4.0)},
		{Name: "b", City: "Austin", State: "TX", Rating: ptr(3.0)},
		{Name: "c", City: "Austin", State: "TX"},
		{Name: "d", City: "Portland", State: "OR", Rating: ptr(4.0)},
		{Name: "e", City: "Portland", State: "ME", Rating: ptr(4.2)},
	}

	rows, err := Compute(courses, minimalCols(), nil, nil, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 city groups, got %d", len(rows))
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.City+"/"+r.State] = r.NumGolfCourses
	}
	if counts["Austin/TX"] != 3 || counts["Portland/OR"] != 1 || counts["Portland/ME"] != 1 {
		t.Errorf("course counts do not match grouping: %v", counts)
	}
}

func TestNormalizationBounds(t *testing.T) {
	courses := []course.Course{
		{Name: "a", City: "A", State: "AA", Rating: ptr(2.0)},
		{Name: "b", City: "B", State: "BB", Rating: ptr(3.5)},
		{Name: "c", City: "C", State: "CC", Rating: ptr(5.0)},
	}

	rows, err := Compute(courses, minimalCols(), nil, nil, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	var min, max float64 = 2, -1
	for _, r := range rows {
		if r.NormAvgRating < min {
			min = r.NormAvgRating
		}
		if r.NormAvgRating > max {
			max = r.NormAvgRating
		}
	}
	if min != 0.0 {
		t.Errorf("normalized minimum must be exactly 0.0, got %v", min)
	}
	if max != 1.0 {
		t.Errorf("normalized maximum must be exactly 1.0, got %v", max)
	}
}

func TestZeroRangeNormalizesToSentinel(t *testing.T) {
	// Every city has exactly one course: num_golf_courses is constant.
	courses := []course.Course{
		{Name: "a", City: "A", State: "AA", Rating: ptr(3.0)},
		{Name: "b", City: "B", State: "BB", Rating: ptr(4.0)},
	}

	rows, err := Compute(courses, minimalCols(), nil, nil, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for _, r := range rows {
		if r.NormNumGolfCourses != ZeroRangeSentinel {
			t.Errorf("constant feature should normalize to %v, got %v for %s",
				ZeroRangeSentinel, r.NormNumGolfCourses, r.City)
		}
	}
}

func TestLowerIsBetterInversion(t *testing.T) {
	courses := []course.Course{
		{Name: "cheap", City: "Cheap", State: "AA", Rating: ptr(4.0), TeeFee: ptr(20)},
		{Name: "dear", City: "Dear", State: "BB", Rating: ptr(4.0), TeeFee: ptr(200)},
	}

	rows, err := Compute(courses, fullCols(), nil, nil, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for _, r := range rows {
		switch r.City {
		case "Cheap":
			if r.NormMedianTeeFee != 1.0 {
				t.Errorf("cheapest city should normalize to 1.0, got %v", r.NormMedianTeeFee)
			}
		case "Dear":
			if r.NormMedianTeeFee != 0.0 {
				t.Errorf("most expensive city should normalize to 0.0, got %v", r.NormMedianTeeFee)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	weights := Weights{FeatAvgRating: 0.7, FeatNumGolfCourses: 0.3}

	first, err := Compute(workedExample(), minimalCols(), nil, weights, quiet())
	if err != nil {
		t.Fatalf("first Compute failed: %v", err)
	}
	second, err := Compute(workedExample(), minimalCols(), nil, weights, quiet())
	if err != nil {
		t.Fatalf("second Compute failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical ranked tables")
	}
}

func TestRankIsStrictTotalOrder(t *testing.T) {
	courses := []course.Course{
		{Name: "a", City: "A", State: "AA", Rating: ptr(4.0)},
		{Name: "b", City: "B", State: "BB", Rating: ptr(4.0)},
		{Name: "c", City: "C", State: "CC", Rating: ptr(4.0)},
		{Name: "d", City: "D", State: "DD", Rating: ptr(4.0)},
	}

	rows, err := Compute(courses, minimalCols(), nil, nil, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	seen := make(map[int]bool)
	for i, r := range rows {
		if r.Rank != i+1 {
			t.Errorf("row %d has rank %d, rows must be sorted by rank ascending", i, r.Rank)
		}
		if seen[r.Rank] {
			t.Errorf("duplicate rank %d", r.Rank)
		}
		seen[r.Rank] = true
		if i > 0 && rows[i-1].Score < r.Score {
			t.Error("scores must be non-increasing down the ranking")
		}
		if i > 0 && rows[i-1].Score == r.Score && rows[i-1].City > r.City {
			t.Error("ties must break by city ascending")
		}
	}
}

func TestStateTableEquivalence(t *testing.T) {
	weights := Weights{FeatAvgRating: 0.6, FeatNumGolfCourses: 0.4}

	without, err := Compute(workedExample(), minimalCols(), nil, weights, quiet())
	if err != nil {
		t.Fatalf("Compute without state table failed: %v", err)
	}

	withZero := Weights{FeatAvgRating: 0.6, FeatNumGolfCourses: 0.4, FeatStateGolfable: 0}
	states := map[string]int{"FL": 1, "AZ": 1}
	with, err := Compute(workedExample(), minimalCols(), states, withZero, quiet())
	if err != nil {
		t.Fatalf("Compute with zero-weight state table failed: %v", err)
	}

	if len(without) != len(with) {
		t.Fatalf("city sets differ: %d vs %d", len(without), len(with))
	}
	for i := range without {
		if without[i].City != with[i].City || without[i].Rank != with[i].Rank {
			t.Errorf("rank %d differs: %s vs %s", i+1, without[i].City, with[i].City)
		}
		if without[i].Score != with[i].Score {
			t.Errorf("score for %s differs: %v vs %v", without[i].City, without[i].Score, with[i].Score)
		}
	}
}

func TestGolfabilityJoin(t *testing.T) {
	t.Run("joins indicator by state", func(t *testing.T) {
		states := map[string]int{"FL": 1, "AZ": 0}
		rows, err := Compute(workedExample(), minimalCols(), states, Weights{}, quiet())
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		for _, r := range rows {
			want := 0
			if r.State == "FL" {
				want = 1
			}
			if r.StateGolfable != want {
				t.Errorf("%s: expected indicator %d, got %d", r.State, want, r.StateGolfable)
			}
		}
	})

	t.Run("unmatched state defaults to zero and logs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.LevelWarn, &buf)

		states := map[string]int{"FL": 1}
		rows, err := Compute(workedExample(), minimalCols(), states, Weights{}, log)
		if err != nil {
			t.Fatalf("unmatched state must not abort the run: %v", err)
		}
		for _, r := range rows {
			if r.State == "AZ" && r.StateGolfable != 0 {
				t.Errorf("unmatched state should default to 0, got %d", r.StateGolfable)
			}
		}
		if !strings.Contains(buf.String(), "no golfability entry") {
			t.Error("unmatched state join should be logged as a data-quality observation")
		}
	})
}

func TestZeroRatedCityUsesSentinel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.LevelWarn, &buf)

	courses := []course.Course{
		{Name: "a", City: "Nowhere", State: "ZZ"},
		{Name: "b", City: "Somewhere", State: "YY", Rating: ptr(4.0)},
	}

	rows, err := Compute(courses, minimalCols(), nil, nil, log)
	if err != nil {
		t.Fatalf("zero rated courses must not abort the run: %v", err)
	}
	for _, r := range rows {
		if r.City == "Nowhere" {
			if r.AvgRating != MissingAggregate {
				t.Errorf("expected sentinel avg_rating %v, got %v", MissingAggregate, r.AvgRating)
			}
			if r.RatedCourses != 0 {
				t.Errorf("expected 0 rated courses, got %d", r.RatedCourses)
			}
		}
	}
	if !strings.Contains(buf.String(), "no rated courses") {
		t.Error("zero-rated city should be logged as a data-quality observation")
	}
}

func TestComputeFailures(t *testing.T) {
	t.Run("empty course table", func(t *testing.T) {
		_, err := Compute(nil, minimalCols(), nil, nil, quiet())
		if !errors.Is(err, course.ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		cols := course.Columns{course.ColCity: true, course.ColState: true}
		_, err := Compute(workedExample(), cols, nil, nil, quiet())
		if !errors.Is(err, course.ErrSchema) {
			t.Errorf("expected ErrSchema, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "rating") {
			t.Errorf("error should name the missing column, got %q", err.Error())
		}
	})

	t.Run("unknown feature", func(t *testing.T) {
		_, err := Compute(workedExample(), minimalCols(), nil, Weights{"privacy_score": 0.5}, quiet())
		if !errors.Is(err, course.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "privacy_score") {
			t.Errorf("error should name the unknown feature, got %q", err.Error())
		}
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := Compute(workedExample(), minimalCols(), nil, Weights{FeatAvgRating: -0.1}, quiet())
		if !errors.Is(err, course.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("golfability requested without state table", func(t *testing.T) {
		_, err := Compute(workedExample(), minimalCols(), nil, Weights{FeatStateGolfable: 0.1}, quiet())
		if !errors.Is(err, course.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("weight on absent feature column", func(t *testing.T) {
		_, err := Compute(workedExample(), minimalCols(), nil, Weights{FeatMedianTeeFee: 0.2}, quiet())
		if !errors.Is(err, course.ErrSchema) {
			t.Errorf("expected ErrSchema, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), course.ColTeeFee) {
			t.Errorf("error should name the missing source column, got %q", err.Error())
		}
	})
}

func TestDefaultWeightsApplyToUnnamedFeatures(t *testing.T) {
	// avg_rating is left out of the explicit config; its documented default
	// (0.35) must apply rather than silently dropping it.
	courses := []course.Course{
		{Name: "a", City: "A", State: "AA", Rating: ptr(5.0)},
		{Name: "b", City: "B", State: "BB", Rating: ptr(1.0)},
	}

	rows, err := Compute(courses, minimalCols(), nil, Weights{FeatNumGolfCourses: 0}, quiet())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	byCity := make(map[string]CityMetrics)
	for _, r := range rows {
		byCity[r.City] = r
	}
	if byCity["A"].Score != 0.35 {
		t.Errorf("expected default avg_rating weight 0.35 to apply, got score %v", byCity["A"].Score)
	}
	if byCity["A"].Rank != 1 || byCity["B"].Rank != 2 {
		t.Error("higher-rated city should rank first under default weights")
	}
}
