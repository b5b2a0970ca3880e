package runner

import "strings"

// Filter returns the runners whose full name, bib number, or participant ID
// contains the search term, case-insensitively. An empty term matches
// everything. The input slice is never mutated.
func Filter(runners []Runner, term string) []Runner {
	term = strings.ToLower(term)

	filtered := make([]Runner, 0, len(runners))
	for _, rn := range runners {
		if Matches(&rn, term) {
			filtered = append(filtered, rn)
		}
	}
	return filtered
}

// Matches reports whether a runner satisfies the lowercased search term.
func Matches(rn *Runner, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rn.FullName), term) {
		return true
	}
	if strings.Contains(strings.ToLower(rn.BibNumber), term) {
		return true
	}
	if rn.ParticipantID != nil && strings.Contains(strings.ToLower(*rn.ParticipantID), term) {
		return true
	}
	return false
}
