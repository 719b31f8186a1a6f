// Package catalog ranks the tag catalog by usage and produces the allowlist
// of top-N tag names that gates every downstream stage.
package catalog

import (
	"sort"

	"github.com/anvgorok/repshape/internal/dump"
	"github.com/anvgorok/repshape/internal/models"
)

// TopTags stable-sorts records by usage count descending and returns the
// first n tag names. Ties keep their original record order, so the result is
// deterministic for a given input ordering. An empty input yields an empty
// allowlist.
func TopTags(records []models.TagRecord, n int) []string {
	sorted := make([]models.TagRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	names := make([]string, 0, n)
	for _, rec := range sorted[:n] {
		names = append(names, rec.Name)
	}
	return names
}

// Load streams tag records from src and returns the top-n allowlist. Rows
// without a TagName are skipped; a missing Count defaults to zero.
func Load(src dump.Source, n int) ([]string, error) {
	var records []models.TagRecord
	err := src.Walk(func(row dump.Row) error {
		name, ok := row.Str("TagName")
		if !ok || name == "" {
			return nil
		}
		records = append(records, models.TagRecord{
			Name:  name,
			Count: row.IntDefault("Count", 0),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return TopTags(records, n), nil
}

// Allowlist is a fixed set-membership view over the ordered top-tag names.
type Allowlist struct {
	order []string
	set   map[string]struct{}
}

// NewAllowlist builds an Allowlist preserving the given order.
func NewAllowlist(names []string) *Allowlist {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return &Allowlist{order: names, set: set}
}

// Contains reports whether the tag is allow-listed.
func (a *Allowlist) Contains(tag string) bool {
	_, ok := a.set[tag]
	return ok
}

// Names returns the ordered tag names.
func (a *Allowlist) Names() []string {
	return a.order
}

// Len returns the number of allow-listed tags.
func (a *Allowlist) Len() int {
	return len(a.order)
}
