package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/cbrunner/golfcities/internal/course"
)

// Weights maps feature name to a non-negative scoring weight.
type Weights map[string]float64

// Defaults returns the documented default weights for the available features.
func Defaults(available map[string]bool) Weights {
	w := make(Weights)
	for _, f := range Features() {
		if available[f.Name] {
			w[f.Name] = f.DefaultWeight
		}
	}
	return w
}

// LoadWeights reads a feature→weight JSON object from path.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights file: %w", err)
	}
	var w Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: weights file %s is not a feature→weight JSON object: %v",
			course.ErrConfig, path, err)
	}
	return w, nil
}

// Validate checks the explicit weight entries before any table is loaded:
// every name must be a registered feature, every weight a non-negative finite
// number, and state_golfable may only appear when the state table was
// supplied. Errors name the offending feature.
func (w Weights) Validate(hasStates bool) error {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := featureByName(name)
		if !ok {
			return fmt.Errorf("%w: unknown feature %q in weight configuration", course.ErrConfig, name)
		}
		v := w[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight for %q is not a finite number", course.ErrConfig, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: weight for %q is negative (%v)", course.ErrConfig, name, v)
		}
		if f.NeedsStates && !hasStates {
			return fmt.Errorf("%w: weight configuration requests %q but no state golfability table was supplied",
				course.ErrConfig, name)
		}
	}
	return nil
}

// validateAvailability checks explicit positive weights against the features
// the loaded table can actually provide. A weight on a feature whose source
// column is absent is a schema error naming the column.
func (w Weights) validateAvailability(available map[string]bool) error {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if w[name] == 0 {
			continue
		}
		f, ok := featureByName(name)
		if !ok || available[name] {
			continue
		}
		if f.NeedsStates {
			return fmt.Errorf("%w: weight configuration requests %q but no state golfability table was supplied",
				course.ErrConfig, name)
		}
		return fmt.Errorf("%w: weight for %q requires course table column %q, which is absent",
			course.ErrSchema, name, f.Column)
	}
	return nil
}

// resolve overlays explicit weights onto the documented defaults for the
// available features, so adding a feature to the table never invisibly drops
// it from scoring.
func resolve(explicit Weights, available map[string]bool) Weights {
	resolved := Defaults(available)
	for name, v := range explicit {
		if available[name] {
			resolved[name] = v
		}
	}
	return resolved
}
