package metrics

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/cbrunner/golfcities/internal/course"
	"github.com/cbrunner/golfcities/internal/logger"
)

// Sentinel values for undefined aggregates. A city whose courses are all
// unrated gets avg_rating 0.0; a feature whose values are identical across
// every city normalizes to 0.0 for all of them.
const (
	MissingAggregate  = 0.0
	ZeroRangeSentinel = 0.0
)

// CityMetrics is one row of the ranked city table: raw aggregates, the
// normalized value of every feature, the composite score, and the rank.
type CityMetrics struct {
	City            string  `json:"city" csv:"city" parquet:"city"`
	State           string  `json:"state" csv:"state" parquet:"state"`
	NumGolfCourses  int     `json:"num_golf_courses" csv:"num_golf_courses" parquet:"num_golf_courses"`
	RatedCourses    int     `json:"rated_courses" csv:"rated_courses" parquet:"rated_courses"`
	AvgRating       float64 `json:"avg_rating" csv:"avg_rating" parquet:"avg_rating"`
	SumRatingsCount int     `json:"sum_ratings_count" csv:"sum_ratings_count" parquet:"sum_ratings_count"`
	MedianTeeFee    float64 `json:"median_tee_fee" csv:"median_tee_fee" parquet:"median_tee_fee"`
	AvgLengthYards  float64 `json:"avg_length_yards" csv:"avg_length_yards" parquet:"avg_length_yards"`
	StateGolfable   int     `json:"state_golfable" csv:"state_golfable" parquet:"state_golfable"`

	NormAvgRating       float64 `json:"norm_avg_rating" csv:"norm_avg_rating" parquet:"norm_avg_rating"`
	NormNumGolfCourses  float64 `json:"norm_num_golf_courses" csv:"norm_num_golf_courses" parquet:"norm_num_golf_courses"`
	NormMedianTeeFee    float64 `json:"norm_median_tee_fee" csv:"norm_median_tee_fee" parquet:"norm_median_tee_fee"`
	NormSumRatingsCount float64 `json:"norm_sum_ratings_count" csv:"norm_sum_ratings_count" parquet:"norm_sum_ratings_count"`
	NormStateGolfable   float64 `json:"norm_state_golfable" csv:"norm_state_golfable" parquet:"norm_state_golfable"`
	NormAvgLengthYards  float64 `json:"norm_avg_length_yards" csv:"norm_avg_length_yards" parquet:"norm_avg_length_yards"`
	NormRatedCourses    float64 `json:"norm_rated_courses" csv:"norm_rated_courses" parquet:"norm_rated_courses"`

	Score float64 `json:"score" csv:"score" parquet:"score"`
	Rank  int     `json:"rank" csv:"rank" parquet:"rank"`
}

// Compute is the metrics engine: it aggregates courses to city granularity,
// min-max normalizes the available features, applies the weight
// configuration, and returns the ranked city table sorted by rank ascending.
//
// It is a pure function of its inputs apart from data-quality logging:
// identical inputs always produce the identical table. Configuration and
// schema problems fail before any aggregation work.
func Compute(courses []course.Course, cols course.Columns, states map[string]int, weights Weights, log *logger.Logger) ([]CityMetrics, error) {
	if log == nil {
		log = logger.New(logger.LevelWarn, io.Discard)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: course table has no rows", course.ErrNoData)
	}
	if err := cols.Validate(course.ColCity, course.ColState, course.ColRating); err != nil {
		return nil, err
	}

	hasStates := states != nil
	if err := weights.Validate(hasStates); err != nil {
		return nil, err
	}
	available := Available(cols, hasStates)
	if err := weights.validateAvailability(available); err != nil {
		return nil, err
	}
	resolved := resolve(weights, available)

	aggs := aggregate(courses, cols, states, log)
	normalize(aggs, available)
	score(aggs, resolved, available)
	rank(aggs)
	round(aggs)

	return aggs, nil
}

type cityKey struct {
	city  string
	state string
}

// aggregate groups courses by (city, state) and computes the per-city raw
// aggregates. Unmatched state joins and all-unrated cities are data-quality
// observations: logged, never fatal.
func aggregate(courses []course.Course, cols course.Columns, states map[string]int, log *logger.Logger) []CityMetrics {
	groups := make(map[cityKey][]course.Course)
	var keys []cityKey
	for _, c := range courses {
		key := cityKey{city: strings.TrimSpace(c.City), state: strings.TrimSpace(c.State)}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], c)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].city != keys[j].city {
			return keys[i].city < keys[j].city
		}
		return keys[i].state < keys[j].state
	})

	aggs := make([]CityMetrics, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		m := CityMetrics{
			City:           key.city,
			State:          key.state,
			NumGolfCourses: len(group),
		}

		var ratingSum float64
		var teeFees []float64
		var lengthSum float64
		lengths := 0
		for _, c := range group {
			if c.Rated() {
				m.RatedCourses++
				ratingSum += *c.Rating
			}
			m.SumRatingsCount += c.RatingsCount
			if c.TeeFee != nil {
				teeFees = append(teeFees, *c.TeeFee)
			}
			if c.LengthYards != nil {
				lengthSum += *c.LengthYards
				lengths++
			}
		}

		if m.RatedCourses > 0 {
			m.AvgRating = ratingSum / float64(m.RatedCourses)
		} else {
			m.AvgRating = MissingAggregate
			log.Warn("city has no rated courses", logger.Fields{
				"city":  key.city,
				"state": key.state,
			})
		}

		if len(teeFees) > 0 {
			m.MedianTeeFee = median(teeFees)
		} else {
			m.MedianTeeFee = MissingAggregate
		}

		if lengths > 0 {
			m.AvgLengthYards = lengthSum / float64(lengths)
		} else {
			m.AvgLengthYards = MissingAggregate
		}

		if states != nil {
			indicator, ok := states[strings.ToUpper(key.state)]
			if !ok {
				log.Warn("state has no golfability entry", logger.Fields{
					"city":  key.city,
					"state": key.state,
				})
			}
			m.StateGolfable = indicator
		}

		aggs = append(aggs, m)
	}

	return aggs
}

// median returns the median of values; the input slice is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// normalize rescales every available feature to [0,1] via min-max over the
// full city set. Each feature scales independently. Lower-is-better features
// are inverted so 1.0 is always best. A zero-range feature maps every city to
// ZeroRangeSentinel.
func normalize(aggs []CityMetrics, available map[string]bool) {
	for _, f := range Features() {
		if !available[f.Name] {
			continue
		}

		min, max := math.Inf(1), math.Inf(-1)
		for i := range aggs {
			v := f.value(&aggs[i])
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}

		rng := max - min
		for i := range aggs {
			n := ZeroRangeSentinel
			if rng > 0 {
				v := f.value(&aggs[i])
				if f.LowerIsBetter {
					n = (max - v) / rng
				} else {
					n = (v - min) / rng
				}
			}
			*f.norm(&aggs[i]) = n
		}
	}
}

// score computes the composite score as the weighted sum of normalized
// features. No hidden rescaling: the score is exactly Σ weight × normalized.
func score(aggs []CityMetrics, weights Weights, available map[string]bool) {
	for i := range aggs {
		var total float64
		for _, f := range Features() {
			if !available[f.Name] {
				continue
			}
			total += weights[f.Name] * *f.norm(&aggs[i])
		}
		aggs[i].Score = total
	}
}

// rank sorts by score descending with a deterministic tie-break (city
// ascending, then state ascending) and assigns 1-based ranks.
func rank(aggs []CityMetrics) {
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].Score != aggs[j].Score {
			return aggs[i].Score > aggs[j].Score
		}
		if aggs[i].City != aggs[j].City {
			return aggs[i].City < aggs[j].City
		}
		return aggs[i].State < aggs[j].State
	})
	for i := range aggs {
		aggs[i].Rank = i + 1
	}
}

// round trims the display aggregates for readability after scoring, so the
// score itself is computed from unrounded values.
func round(aggs []CityMetrics) {
	for i := range aggs {
		aggs[i].AvgRating = roundTo(aggs[i].AvgRating, 2)
		aggs[i].MedianTeeFee = roundTo(aggs[i].MedianTeeFee, 2)
		aggs[i].AvgLengthYards = roundTo(aggs[i].AvgLengthYards, 1)
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
