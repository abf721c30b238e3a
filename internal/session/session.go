// Package session holds the most recent categorization run for the
// presentation layers.
package session

import (
	"sync"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/report"
	"github.com/google/uuid"
)

// Run is one completed categorization.
type Run struct {
	CreatedAt time.Time              `json:"created_at"`
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Records   []model.EnrichedRecord `json:"records"`
	Summary   report.Summary         `json:"summary"`
}

// NewRun summarizes records into a run stamped with a fresh ID.
func NewRun(source string, records []model.EnrichedRecord, createdAt time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: createdAt,
		Records:   records,
		Summary:   report.Summarize(records),
	}
}

// ExportFilename names this run's CSV export.
func (r *Run) ExportFilename() string {
	return report.ExportFilename(r.CreatedAt)
}

// Store keeps only the latest run; each Replace discards the previous one.
type Store struct {
	latest *Run
	mu     sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace makes run the latest.
func (s *Store) Replace(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = run
}

// Latest returns the most recent run, if any.
func (s *Store) Latest() (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}
