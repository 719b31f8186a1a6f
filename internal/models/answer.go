package models

import "errors"

// LengthBucket categorizes an answer body by word count.
type LengthBucket string

const (
	// LengthShort is fewer than the short-word threshold (summarized answers).
	LengthShort LengthBucket = "Short"
	// LengthMedium is the reference bucket between the two thresholds, inclusive.
	LengthMedium LengthBucket = "Medium"
	// LengthLong is more than the long-word threshold.
	LengthLong LengthBucket = "Long"
)

// AnswerFeatures holds the structural features extracted from one answer body,
// together with provenance and outcome fields. Features are derived once at
// extraction time and never mutated afterward.
type AnswerFeatures struct {
	AnswerID     int          `json:"answer_id"`
	OwnerID      int          `json:"owner_id"`
	Shape        Shape        `json:"shape"`
	LengthBucket LengthBucket `json:"length_bucket"`
	WordCount    int          `json:"word_count"`
	HasCode      bool         `json:"has_code"`
	HasImage     bool         `json:"has_image"`
	HasRef       bool         `json:"has_ref"`
	Upvotes      int          `json:"upvotes"`
	Accepted     bool         `json:"accepted"`
}

// Preferred reports whether readers preferred the answer: at least one
// upvote, or marked accepted by the question author.
func (a *AnswerFeatures) Preferred() bool {
	return a.Upvotes > 0 || a.Accepted
}

// Validate checks that the answer feature fields are valid.
func (a *AnswerFeatures) Validate() error {
	if a.AnswerID <= 0 {
		return errors.New("answer ID must be positive")
	}
	if a.OwnerID <= 0 {
		return errors.New("owner ID must be positive")
	}
	if !a.Shape.Classified() {
		return errors.New("answer must belong to a classified user")
	}
	switch a.LengthBucket {
	case LengthShort, LengthMedium, LengthLong:
	default:
		return errors.New("length bucket must be Short, Medium, or Long")
	}
	if a.WordCount < 0 {
		return errors.New("word count must not be negative")
	}
	return nil
}
