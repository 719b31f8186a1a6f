package models

import (
	"errors"
	"math"
	"time"
)

// Named coefficients reported for every fitted segment, in fixed column order.
const (
	CoefLengthLong  = "Answer Length (Long)"
	CoefLengthShort = "Answer Length (Summ.)"
	CoefCode        = "Includes Code"
	CoefImage       = "Includes Image"
	CoefRef         = "Includes Reference"
)

// CoefficientOrder is the fixed column order of the final report, independent
// of fit order.
var CoefficientOrder = []string{
	CoefLengthLong,
	CoefLengthShort,
	CoefCode,
	CoefImage,
	CoefRef,
}

// SegmentResult holds the fitted logistic-regression coefficients for one
// shape segment. Coefficients are kept at full precision; rounding happens
// at reporting time only.
type SegmentResult struct {
	Shape        Shape              `json:"shape"`
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	Observations int                `json:"observations"`
	Converged    bool               `json:"converged"`
	Warning      string             `json:"warning,omitempty"`
}

// Coefficient returns the named coefficient rounded to three decimal places
// for reporting.
func (r *SegmentResult) Coefficient(name string) float64 {
	return math.Round(r.Coefficients[name]*1000) / 1000
}

// Validate checks that the segment result fields are valid.
func (r *SegmentResult) Validate() error {
	if !r.Shape.Classified() {
		return errors.New("segment shape must be a classified archetype")
	}
	if r.Observations <= 0 {
		return errors.New("segment observations must be positive")
	}
	for name := range r.Coefficients {
		known := false
		for _, want := range CoefficientOrder {
			if name == want {
				known = true
				break
			}
		}
		if !known {
			return errors.New("unknown coefficient name: " + name)
		}
	}
	if !r.Converged && r.Warning == "" {
		return errors.New("non-convergent segment must carry a warning")
	}
	return nil
}

// Report is the final output of a pipeline run: per-shape classified-user
// counts and one regression result per shape that met the segment-size floor.
type Report struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	ShapeCounts map[Shape]int           `json:"shape_counts"`
	Segments    map[Shape]SegmentResult `json:"segments"`
}

// Validate checks that the report fields are valid.
func (r *Report) Validate() error {
	if r.RunID == "" {
		return errors.New("report run ID must not be empty")
	}
	if r.GeneratedAt.IsZero() {
		return errors.New("report generation time must be set")
	}
	for shape, seg := range r.Segments {
		if seg.Shape != shape {
			return errors.New("segment keyed under wrong shape")
		}
		if err := seg.Validate(); err != nil {
			return err
		}
	}
	return nil
}
