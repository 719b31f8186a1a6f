// Package profile builds per-user, per-tag reputation-gain profiles from the
// user and post streams.
//
// Profiling is two passes in a fixed order: the user stream is indexed first
// to find sufficiently reputable users, then the post stream is walked and
// each post's score contributes reputation gain to every allow-listed tag it
// carries, under its owning user. The gain proxy is max(score*10, 0); the
// official reputation formula is more complex, but the proxy is monotonic in
// score and the shape thresholds were tuned against it, so it is preserved
// exactly.
package profile

import (
	"regexp"

	"github.com/anvgorok/repshape/internal/catalog"
	"github.com/anvgorok/repshape/internal/dump"
)

// tagPattern splits a concatenated bracket-delimited tag string:
// "<python><java>" -> ["python", "java"].
var tagPattern = regexp.MustCompile(`<([^>]+)>`)

// Index maps user ID to total reputation for users at or above the
// reputation floor. Built once, read-only thereafter.
type Index map[int]int

// TagGains maps an allow-listed tag name to the reputation gain a user
// accumulated on it.
type TagGains map[string]int

// Profiles maps user ID to that user's tag-gain counters. Only indexed users
// and allow-listed tags ever appear as keys.
type Profiles map[int]TagGains

// IndexUsers streams the user source and keeps users whose reputation is at
// least minReputation. Rows without an Id or Reputation are skipped.
func IndexUsers(users dump.Source, minReputation int) (Index, error) {
	index := make(Index)
	err := users.Walk(func(row dump.Row) error {
		id, ok := row.Int("Id")
		if !ok {
			return nil
		}
		rep, ok := row.Int("Reputation")
		if !ok {
			return nil
		}
		if rep >= minReputation {
			index[id] = rep
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// AccumulateGains streams the post source and builds tag-gain profiles for
// indexed users. A post with no owner, an owner outside the index, no tags,
// or no allow-listed tags contributes nothing. The gain is added in full to
// every surviving tag, not split between them.
func AccumulateGains(posts dump.Source, index Index, allowlist *catalog.Allowlist) (Profiles, error) {
	profiles := make(Profiles)
	err := posts.Walk(func(row dump.Row) error {
		owner, ok := row.Int("OwnerUserId")
		if !ok {
			return nil
		}
		if _, ok := index[owner]; !ok {
			return nil
		}

		rawTags, ok := row.Str("Tags")
		if !ok || rawTags == "" {
			return nil
		}
		tags := allowedTags(rawTags, allowlist)
		if len(tags) == 0 {
			return nil
		}

		gain := row.IntDefault("Score", 0) * 10
		if gain < 0 {
			gain = 0
		}

		gains := profiles[owner]
		if gains == nil {
			gains = make(TagGains)
			profiles[owner] = gains
		}
		for _, tag := range tags {
			gains[tag] += gain
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// ParseTags splits a bracket-delimited tag string into individual tokens.
func ParseTags(raw string) []string {
	matches := tagPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

func allowedTags(raw string, allowlist *catalog.Allowlist) []string {
	var kept []string
	for _, tag := range ParseTags(raw) {
		if allowlist.Contains(tag) {
			kept = append(kept, tag)
		}
	}
	return kept
}
