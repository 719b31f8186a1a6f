// Package shape assigns expertise archetypes to tag-reputation profiles.
//
// Classification is an ordered list of predicate rules over the descending
// share vector of a user's tag gains; the first matching rule wins. The
// thresholds encode breadth-vs-depth archetypes from the reproduced study
// and are fixed constants, not learned. All interval boundaries are
// inclusive on both ends.
package shape

import (
	"sort"

	"github.com/anvgorok/repshape/internal/models"
	"github.com/anvgorok/repshape/internal/profile"
)

const (
	// iTopShareMin: I-shaped needs >= 90% of gain in one tag.
	iTopShareMin = 0.90

	// T-shaped: 50-70% in one tag plus at least 10 other tags.
	tTopShareMin = 0.50
	tTopShareMax = 0.70
	tMinTags     = 11

	// Pi-shaped: top two tags 30-45% each, together >= 70%.
	piShareMin    = 0.30
	piShareMax    = 0.45
	piPairSumMin  = 0.70
	piMinTagCount = 2

	// Comb-shaped: 3-5 of the top five tags at 15-25% each, top tag <= 30%.
	combShareMin    = 0.15
	combShareMax    = 0.25
	combTopShareMax = 0.30
	combCountMin    = 3
	combCountMax    = 5
)

type rule struct {
	label models.Shape
	match func(percs []float64) bool
}

// rules are evaluated in priority order; earlier rules take precedence where
// intervals overlap.
var rules = []rule{
	{models.ShapeI, func(p []float64) bool {
		return p[0] >= iTopShareMin
	}},
	{models.ShapeT, func(p []float64) bool {
		return p[0] >= tTopShareMin && p[0] <= tTopShareMax && len(p) >= tMinTags
	}},
	{models.ShapePi, func(p []float64) bool {
		if len(p) < piMinTagCount {
			return false
		}
		if p[0] < piShareMin || p[0] > piShareMax {
			return false
		}
		if p[1] < piShareMin || p[1] > piShareMax {
			return false
		}
		return p[0]+p[1] >= piPairSumMin
	}},
	{models.ShapeComb, func(p []float64) bool {
		if p[0] > combTopShareMax {
			return false
		}
		inBand := 0
		for i := 0; i < len(p) && i < 5; i++ {
			if p[i] >= combShareMin && p[i] <= combShareMax {
				inBand++
			}
		}
		return inBand >= combCountMin && inBand <= combCountMax
	}},
}

// Classify maps a tag-gain profile to an expertise shape. An empty or
// all-zero profile is unclassified. Classification is a pure function of the
// sorted share vector: tag identity only matters through ranking.
func Classify(gains profile.TagGains) models.Shape {
	percs := shares(gains)
	if percs == nil {
		return models.ShapeUnclassified
	}
	for _, r := range rules {
		if r.match(percs) {
			return r.label
		}
	}
	return models.ShapeUnclassified
}

// shares returns each tag's fraction of the total gain, sorted descending,
// or nil when there is no gain to distribute.
func shares(gains profile.TagGains) []float64 {
	if len(gains) == 0 {
		return nil
	}
	total := 0
	values := make([]int, 0, len(gains))
	for _, v := range gains {
		total += v
		values = append(values, v)
	}
	if total == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	percs := make([]float64, len(values))
	for i, v := range values {
		percs[i] = float64(v) / float64(total)
	}
	return percs
}
