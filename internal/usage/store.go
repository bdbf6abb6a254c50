package usage

import (
	"context"
	"sync"
)

// InMemoryStore keeps usage records in-process. The default for local runs and
// tests; counts do not survive a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func (s *InMemoryStore) Load(_ context.Context, clientID string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[clientID]
	return rec, ok, nil
}

func (s *InMemoryStore) Save(_ context.Context, clientID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[clientID] = rec
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
