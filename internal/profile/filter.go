package profile

import "strings"

// FilterAll matches every status or role in Filter.
const FilterAll = "all"

// Filter returns the profiles matching all three predicates: a
// case-insensitive substring match of the search term against email or
// role, an exact status match, and an exact role match. Passing "all" (or
// an empty string) for status or role disables that predicate. The input
// slice is never mutated.
func Filter(profiles []Profile, term, status, role string) []Profile {
	term = strings.ToLower(term)

	filtered := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if matches(&p, term, status, role) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matches(p *Profile, term, status, role string) bool {
	effRole := p.EffectiveRole()
	effStatus := p.EffectiveStatus()

	if term != "" &&
		!strings.Contains(strings.ToLower(p.Email), term) &&
		!strings.Contains(strings.ToLower(effRole), term) {
		return false
	}
	if status != "" && status != FilterAll && effStatus != status {
		return false
	}
	if role != "" && role != FilterAll && effRole != role {
		return false
	}
	return true
}
