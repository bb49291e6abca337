package metrics

import "github.com/cbrunner/golfcities/internal/course"

// Feature names accepted by the weight configuration.
const (
	FeatAvgRating       = "avg_rating"
	FeatNumGolfCourses  = "num_golf_courses"
	FeatMedianTeeFee    = "median_tee_fee"
	FeatSumRatingsCount = "sum_ratings_count"
	FeatStateGolfable   = "state_golfable"
	FeatAvgLengthYards  = "avg_length_yards"
	FeatRatedCourses    = "rated_courses"
)

// Feature describes one scorable city aggregate: where it comes from, which
// direction is better, and its documented default weight. Defaults are never
// silently zero; a feature that is present but unnamed in the configuration
// scores with the default listed here.
type Feature struct {
	Name          string
	Column        string // source column in the course table, "" if always computable
	LowerIsBetter bool
	DefaultWeight float64
	NeedsStates   bool // requires the per-state golfability table

	value func(*CityMetrics) float64
	norm  func(*CityMetrics) *float64
}

// registry lists every scorable feature in output column order.
var registry = []Feature{
	{
		Name:          FeatAvgRating,
		Column:        course.ColRating,
		DefaultWeight: 0.35,
		value:         func(m *CityMetrics) float64 { return m.AvgRating },
		norm:          func(m *CityMetrics) *float64 { return &m.NormAvgRating },
	},
	{
		Name:          FeatNumGolfCourses,
		DefaultWeight: 0.25,
		value:         func(m *CityMetrics) float64 { return float64(m.NumGolfCourses) },
		norm:          func(m *CityMetrics) *float64 { return &m.NormNumGolfCourses },
	},
	{
		Name:          FeatMedianTeeFee,
		Column:        course.ColTeeFee,
		LowerIsBetter: true,
		DefaultWeight: 0.20,
		value:         func(m *CityMetrics) float64 { return m.MedianTeeFee },
		norm:          func(m *CityMetrics) *float64 { return &m.NormMedianTeeFee },
	},
	{
		Name:          FeatSumRatingsCount,
		Column:        course.ColRatingsCount,
		DefaultWeight: 0.10,
		value:         func(m *CityMetrics) float64 { return float64(m.SumRatingsCount) },
		norm:          func(m *CityMetrics) *float64 { return &m.NormSumRatingsCount },
	},
	{
		Name:          FeatStateGolfable,
		NeedsStates:   true,
		DefaultWeight: 0.10,
		value:         func(m *CityMetrics) float64 { return float64(m.StateGolfable) },
		norm:          func(m *CityMetrics) *float64 { return &m.NormStateGolfable },
	},
	{
		Name:          FeatAvgLengthYards,
		Column:        course.ColLengthYards,
		DefaultWeight: 0.0,
		value:         func(m *CityMetrics) float64 { return m.AvgLengthYards },
		norm:          func(m *CityMetrics) *float64 { return &m.NormAvgLengthYards },
	},
	{
		Name:          FeatRatedCourses,
		Column:        course.ColRating,
		DefaultWeight: 0.0,
		value:         func(m *CityMetrics) float64 { return float64(m.RatedCourses) },
		norm:          func(m *CityMetrics) *float64 { return &m.NormRatedCourses },
	},
}

// Features returns the registry in output column order.
func Features() []Feature {
	return registry
}

// featureByName returns the registry entry for name.
func featureByName(name string) (Feature, bool) {
	for _, f := range registry {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Available reports which features can be computed from the given input
// columns and the presence of the state golfability table.
func Available(cols course.Columns, hasStates bool) map[string]bool {
	avail := make(map[string]bool, len(registry))
	for _, f := range registry {
		switch {
		case f.NeedsStates:
			avail[f.Name] = hasStates
		case f.Column != "":
			avail[f.Name] = cols.Has(f.Column)
		default:
			avail[f.Name] = true
		}
	}
	return avail
}
