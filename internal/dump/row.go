// Package dump reads Stack Exchange data-dump files as forward-only streams
// of attribute-keyed rows. All dump files (Tags.xml, Users.xml, Posts.xml)
// share the same layout: a single root element whose children are empty
// <row .../> elements carrying all data as XML attributes.
//
// Reading is strictly streaming: one row is decoded at a time and handed to
// the caller, so peak memory stays bounded regardless of file size. The same
// file can be walked any number of times; each walk is an independent pass.
package dump

import "strconv"

// Row is one dump record: a flat set of attribute values keyed by attribute
// name. Missing attributes are surfaced through the ok return of the typed
// getters so callers can decide whether a record is skippable.
type Row map[string]string

// Str returns the named attribute and whether it was present.
func (r Row) Str(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// Int returns the named attribute parsed as an integer. The ok return is
// false if the attribute is absent or not a valid integer.
func (r Row) Int(name string) (int, bool) {
	v, ok := r[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntDefault returns the named attribute parsed as an integer, or def when
// the attribute is absent or malformed.
func (r Row) IntDefault(name string, def int) int {
	if n, ok := r.Int(name); ok {
		return n
	}
	return def
}
