package pipeline

// Progress reports how far a run has advanced.
type Progress struct {
	Current   string
	Completed int
	Total     int
}

// Fraction returns the share of completed transactions in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// ProgressFunc receives a Progress after each transaction finishes. Calls are
// serialized and Completed never decreases.
type ProgressFunc func(Progress)
