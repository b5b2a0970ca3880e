package kit

import "strings"

// Filter returns the kits whose kit number, runner name, or runner
// participant ID contains the search term, case-insensitively. An empty
// term matches everything. The input slice is never mutated.
func Filter(kits []KitWithRunner, term string) []KitWithRunner {
	term = strings.ToLower(term)

	filtered := make([]KitWithRunner, 0, len(kits))
	for _, kw := range kits {
		if matches(&kw, term) {
			filtered = append(filtered, kw)
		}
	}
	return filtered
}

func matches(kw *KitWithRunner, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(kw.KitNumber), term) {
		return true
	}
	if strings.Contains(strings.ToLower(kw.Runner.FullName), term) {
		return true
	}
	if kw.Runner.ParticipantID != nil && strings.Contains(strings.ToLower(*kw.Runner.ParticipantID), term) {
		return true
	}
	return false
}
