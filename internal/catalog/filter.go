// ABOUTME: Case filter over the catalog by rounded simulation parameters
// ABOUTME: Returns each distinct (case, p, t, h2o) once, in first-seen order
package catalog

import (
	"fmt"
	"math"

	"github.com/harper/flowscope/internal/models"
)

// Range is a closed interval [Min, Max]
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the closed interval
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Validate rejects NaN bounds and inverted intervals
func (r Range) Validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%w: %s range contains NaN", models.ErrInvalidRequest, name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: %s range min %g > max %g", models.ErrInvalidRequest, name, r.Min, r.Max)
	}
	return nil
}

// CaseRanges bounds the three simulation parameters.
// H2O is expressed as a percentage, matching CaseSummary.H2O.
type CaseRanges struct {
	P   Range
	T   Range
	H2O Range
}

// Validate checks all three intervals
func (r CaseRanges) Validate() error {
	if err := r.P.Validate("p"); err != nil {
		return err
	}
	if err := r.T.Validate("t"); err != nil {
		return err
	}
	return r.H2O.Validate("h2o")
}

// CaseSummary is one case with its rounded parameters
type CaseSummary struct {
	Case string  `json:"case"`
	P    float64 `json:"p"`
	T    float64 `json:"t"`
	H2O  float64 `json:"h2o"`
}

// Summarize rounds a record's parameters for display and filtering:
// p to 3 places, t to 2 places, h2o as a percentage to 2 places.
func Summarize(r Record) CaseSummary {
	return CaseSummary{
		Case: r.Case,
		P:    Round(r.PressureRatio, 3),
		T:    Round(r.Temperature, 2),
		H2O:  Round(r.WaterFraction*100, 2),
	}
}

// FilterCases scans the whole catalog once and returns the distinct case
// summaries whose rounded parameters fall inside all three ranges.
func (c *Catalog) FilterCases(ranges CaseRanges) []CaseSummary {
	seen := make(map[CaseSummary]struct{})
	out := []CaseSummary{}

	for _, r := range c.records {
		s := Summarize(r)
		if !ranges.P.Contains(s.P) || !ranges.T.Contains(s.T) || !ranges.H2O.Contains(s.H2O) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Round rounds x to the given number of decimal places, halves away from zero
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
