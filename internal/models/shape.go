// Package models defines the core domain entities for the repshape pipeline.
// These models represent tag usage records, per-user tag-reputation profiles,
// expertise shapes, extracted answer features, and the final regression report.
// Models that cross package boundaries include built-in validation.
//
// Terminology (matching the Stack Exchange data dump):
//   - Tag: a topical label attached to a post (e.g. a technology name).
//   - Reputation: a user's cumulative score, used as a proxy for expertise.
//   - Shape: a categorical archetype (I, T, Pi, Comb) describing how
//     concentrated or broad a user's tag-reputation distribution is.
package models

// Shape is an expertise archetype derived from a user's tag-reputation
// distribution. The zero value means the user did not match any archetype
// and is excluded from downstream stages.
type Shape string

const (
	// ShapeUnclassified marks a profile that matched no archetype rule.
	ShapeUnclassified Shape = ""
	// ShapeI is deep expertise in a single tag (top share >= 90%).
	ShapeI Shape = "I"
	// ShapeT is one dominant tag (50-70%) with broad secondary coverage.
	ShapeT Shape = "T"
	// ShapePi is two dominant tags (30-45% each) covering >= 70% together.
	ShapePi Shape = "Pi"
	// ShapeComb is 3-5 evenly weighted tags with no dominant one.
	ShapeComb Shape = "Comb"
)

// AllShapes lists the classified archetypes in report row order.
var AllShapes = []Shape{ShapeI, ShapeT, ShapePi, ShapeComb}

// Classified reports whether the shape is one of the four archetypes.
func (s Shape) Classified() bool {
	switch s {
	case ShapeI, ShapeT, ShapePi, ShapeComb:
		return true
	}
	return false
}
