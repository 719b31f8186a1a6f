package models

import "errors"

// TagRecord is a single row from the tag catalog: a tag name and the number
// of posts carrying it. Records are immutable once loaded.
type TagRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Validate checks that the tag record fields are valid.
func (t *TagRecord) Validate() error {
	if t.Name == "" {
		return errors.New("tag name must not be empty")
	}
	if t.Count < 0 {
		return errors.New("tag usage count must not be negative")
	}
	return nil
}
