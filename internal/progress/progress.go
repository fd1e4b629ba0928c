// Package progress tracks the state of asynchronous generation runs so HTTP
// polling handlers can report on work happening in background goroutines.
package progress

import (
	"sync"
	"time"
)

// Run statuses. A run moves processing -> complete or processing -> error and
// never back.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// Snapshot is the externally visible state of one run at a point in time.
type Snapshot struct {
	Status    string    `json:"status"`
	Step      string    `json:"step"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds the latest snapshot per run id. It is safe for concurrent use;
// the background pipeline writes while HTTP handlers read.
type Store struct {
	mu   sync.RWMutex
	runs map[string]Snapshot
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]Snapshot),
		now:  time.Now,
	}
}

// Set records the latest snapshot for id, stamping it with the current time.
// Later writes fully replace earlier ones.
func (s *Store) Set(id, status, step string, pct int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = Snapshot{
		Status:    status,
		Step:      step,
		Progress:  pct,
		Message:   message,
		Timestamp: s.now(),
	}
}

// Get returns the snapshot for id and whether the run is known.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.runs[id]
	return snap, ok
}

// Delete forgets a run. Callers drop finished runs once the client has seen
// the terminal snapshot.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
}

// Len reports the number of tracked runs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
