package models

// Stats is a per-user aggregate recomputed from submission rows on every
// read; it is never stored.
type Stats struct {
	Total    int64
	Positive int64
}

// Negative is the number of submissions without a detection.
func (s Stats) Negative() int64 {
	return s.Total - s.Positive
}

// PositivePercent returns 100*Positive/Total, or 0 when there is nothing yet.
func (s Stats) PositivePercent() float64 {
	if s.Total <= 0 {
		return 0
	}
	return 100 * float64(s.Positive) / float64(s.Total)
}
