package teeradar

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CourseInfo is one course entry as returned by the API. Numeric fields use
// the Flex types because the API emits some numbers as quoted strings, and
// omits them entirely for other records.
type CourseInfo struct {
	CourseID     string    `json:"course_id"`
	Name         string    `json:"name"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	Latitude     FlexFloat `json:"latitude,omitempty"`
	Longitude    FlexFloat `json:"longitude,omitempty"`
	LengthYards  FlexFloat `json:"length_yards,omitempty"`
	Holes        FlexInt   `json:"holes,omitempty"`
	Access       string    `json:"access,omitempty"`
	Rating       FlexFloat `json:"rating,omitempty"`
	RatingsCount FlexInt   `json:"ratings_count,omitempty"`
	TeeFee       FlexFloat `json:"tee_fee,omitempty"`
}

// FlexFloat is a nullable float that decodes JSON numbers, quoted numbers,
// null, and empty strings. Unparseable strings coerce to null rather than
// failing, matching the consolidator's numeric coercion rules.
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = FlexFloat{}
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*f = FlexFloat{}
			return nil
		}
		*f = FlexFloat{Value: v, Valid: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler; null values stay null on disk
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns the value as a nullable pointer
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexInt is a nullable integer with the same coercion rules as FlexFloat.
// Fractional inputs are truncated.
type FlexInt struct {
	Value int
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var ff FlexFloat
	if err := ff.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = FlexInt{Value: int(ff.Value), Valid: ff.Valid}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Or returns the value, or fallback when null
func (f FlexInt) Or(fallback int) int {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

// Ptr returns the value as a nullable pointer
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
