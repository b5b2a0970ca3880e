package stats

// Summary holds the dashboard aggregates, read in a single snapshot.
type Summary struct {
	TotalRunners  int
	PendingKits   int
	CollectedKits int
}

// CollectionRate returns the percentage of kits collected, rounded to the
// nearest integer, or 0 when no kits exist.
func (s *Summary) CollectionRate() int {
	total := s.PendingKits + s.CollectedKits
	if total == 0 {
		return 0
	}
	return int(float64(s.CollectedKits)/float64(total)*100 + 0.5)
}
