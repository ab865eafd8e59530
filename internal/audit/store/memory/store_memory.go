package memory

import (
	"context"
	"sync"

	"registrar/internal/audit"
)

// InMemoryStore keeps audit events in memory. Used by tests and as the
// trail backend when no relational database is configured.
type InMemoryStore struct {
	mu        sync.RWMutex
	byStudent map[string][]audit.Event
	all       []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byStudent: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byStudent[event.StudentID] = append(s.byStudent[event.StudentID], event)
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListByStudentID(_ context.Context, studentID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.byStudent[studentID]...), nil
}

// ListRecent returns the last N events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.all) - limit
	if start < 0 {
		start = 0
	}
	recent := make([]audit.Event, 0, len(s.all)-start)
	for i := len(s.all) - 1; i >= start; i-- {
		recent = append(recent, s.all[i])
	}
	return recent, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byStudent = make(map[string][]audit.Event)
	s.all = nil
}
