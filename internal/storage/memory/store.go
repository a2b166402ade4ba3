// Package memory keeps session snapshots in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/jaminalder/tictactoe-rounds/internal/domain"
	"github.com/jaminalder/tictactoe-rounds/internal/storage"
)

// Store is a map of snapshots guarded by a mutex. Matches are values, so
// callers never share state with the map.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.Match
}

// New returns an empty store.
func New() *Store {
	return &Store{sessions: make(map[string]domain.Match)}
}

// Load returns the snapshot for id.
func (s *Store) Load(_ context.Context, id string) (domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.sessions[id]
	if !ok {
		return domain.Match{}, storage.ErrSessionNotFound
	}
	return m, nil
}

// Update runs fn on the snapshot for id and stores the result when fn asks
// for it. fn runs under the store lock.
func (s *Store) Update(_ context.Context, id string, fn storage.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, found := s.sessions[id]
	if next, write := fn(cur, found); write {
		s.sessions[id] = next
	}
	return nil
}

// Delete forgets id. Unknown ids are ignored.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
