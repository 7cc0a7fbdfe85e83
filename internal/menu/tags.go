package menu

import "strings"

// NormalizeTags lower-cases, trims and de-duplicates a tag list,
// preserving first-seen order. Allergen and dietary tags are always
// stored in this form.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// TagsEqual compares two tag lists as sets. Both sides are normalized
// first, so callers can compare raw user input against stored tags.
func TagsEqual(a, b []string) bool {
	na, nb := NormalizeTags(a), NormalizeTags(b)
	if len(na) != len(nb) {
		return false
	}

	set := make(map[string]bool, len(na))
	for _, t := range na {
		set[t] = true
	}
	for _, t := range nb {
		if !set[t] {
			return false
		}
	}
	return true
}

// AddTag inserts a tag into a normalized set, returning the updated
// slice. Adding "Nuts" to a set already holding "nuts" is a no-op.
func AddTag(tags []string, tag string) []string {
	return NormalizeTags(append(tags, tag))
}
