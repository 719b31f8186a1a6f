package models

import (
	"testing"
	"time"
)

func TestTagRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  TagRecord
		wantErr bool
	}{
		{"valid record", TagRecord{Name: "go", Count: 10}, false},
		{"zero usage is valid", TagRecord{Name: "go", Count: 0}, false},
		{"empty name", TagRecord{Count: 10}, true},
		{"negative count", TagRecord{Name: "go", Count: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShapeClassified(t *testing.T) {
	for _, s := range AllShapes {
		if !s.Classified() {
			t.Errorf("Shape %q should be classified", s)
		}
	}
	if ShapeUnclassified.Classified() {
		t.Error("Unclassified shape reported as classified")
	}
	if Shape("X").Classified() {
		t.Error("Unknown shape reported as classified")
	}
}

func TestAnswerPreferred(t *testing.T) {
	tests := []struct {
		name     string
		upvotes  int
		accepted bool
		want     bool
	}{
		{"accepted without upvotes", 0, true, true},
		{"upvoted without acceptance", 1, false, true},
		{"both", 3, true, true},
		{"neither", 0, false, false},
		{"net-negative score", -1, false, false},
		{"net-negative but accepted", -2, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnswerFeatures{Upvotes: tt.upvotes, Accepted: tt.accepted}
			if got := a.Preferred(); got != tt.want {
				t.Errorf("Preferred() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnswerFeaturesValidate(t *testing.T) {
	valid := AnswerFeatures{
		AnswerID:     10,
		OwnerID:      7,
		Shape:        ShapeI,
		LengthBucket: LengthMedium,
		WordCount:    200,
	}

	tests := []struct {
		name    string
		mutate  func(*AnswerFeatures)
		wantErr bool
	}{
		{"valid answer", func(*AnswerFeatures) {}, false},
		{"missing answer ID", func(a *AnswerFeatures) { a.AnswerID = 0 }, true},
		{"missing owner ID", func(a *AnswerFeatures) { a.OwnerID = 0 }, true},
		{"unclassified shape", func(a *AnswerFeatures) { a.Shape = ShapeUnclassified }, true},
		{"bad length bucket", func(a *AnswerFeatures) { a.LengthBucket = "Gigantic" }, true},
		{"negative word count", func(a *AnswerFeatures) { a.WordCount = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSegmentResultCoefficientRounding(t *testing.T) {
	seg := SegmentResult{
		Coefficients: map[string]float64{
			CoefCode:  0.12345,
			CoefImage: -0.0004,
			CoefRef:   0.9996,
		},
	}

	tests := []struct {
		coef string
		want float64
	}{
		{CoefCode, 0.123},
		{CoefImage, -0.0},
		{CoefRef, 1.0},
	}
	for _, tt := range tests {
		if got := seg.Coefficient(tt.coef); got != tt.want {
			t.Errorf("Coefficient(%q) = %v, want %v", tt.coef, got, tt.want)
		}
	}
}

func TestSegmentResultValidate(t *testing.T) {
	valid := SegmentResult{
		Shape:        ShapePi,
		Coefficients: map[string]float64{CoefCode: 0.5},
		Observations: 120,
		Converged:    true,
	}

	tests := []struct {
		name    string
		mutate  func(*SegmentResult)
		wantErr bool
	}{
		{"valid segment", func(*SegmentResult) {}, false},
		{"unclassified shape", func(s *SegmentResult) { s.Shape = ShapeUnclassified }, true},
		{"zero observations", func(s *SegmentResult) { s.Observations = 0 }, true},
		{"unknown coefficient name", func(s *SegmentResult) {
			s.Coefficients = map[string]float64{"Mystery": 1}
		}, true},
		{"non-convergent without warning", func(s *SegmentResult) { s.Converged = false }, true},
		{"non-convergent with warning", func(s *SegmentResult) {
			s.Converged = false
			s.Warning = "did not converge"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReportValidate(t *testing.T) {
	valid := Report{
		RunID:       "run-1",
		GeneratedAt: time.Now(),
		ShapeCounts: map[Shape]int{ShapeI: 10},
		Segments: map[Shape]SegmentResult{
			ShapeI: {
				Shape:        ShapeI,
				Coefficients: map[string]float64{CoefCode: 0.1},
				Observations: 100,
				Converged:    true,
			},
		},
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid report: %v", err)
	}

	missingID := valid
	missingID.RunID = ""
	if err := missingID.Validate(); err == nil {
		t.Error("Expected error for missing run ID")
	}

	misKeyed := valid
	misKeyed.Segments = map[Shape]SegmentResult{
		ShapeT: valid.Segments[ShapeI], // segment says I, keyed under T
	}
	if err := misKeyed.Validate(); err == nil {
		t.Error("Expected error for segment keyed under wrong shape")
	}
}
