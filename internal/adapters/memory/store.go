// Package memory implements ports.SessionStore in process memory. It is
// the default store for single-instance deployments and tests.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/moviops/movi/pkg/domain"
)

// Store holds sessions in a map. Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// clone round-trips the session through JSON so callers cannot mutate
// stored state through shared pointers. This mirrors what a serializing
// store does anyway and keeps behavior identical across backends.
func clone(sess *domain.Session) (*domain.Session, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	out := &domain.Session{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save persists the session.
func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	copied, err := clone(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sess.ID] = copied
	return nil
}

// Load retrieves a session by ID.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return clone(sess)
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the IDs of stored sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// PurgeExpired drops sessions idle since before the cutoff.
func (s *Store) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, sess := range s.data {
		if sess.LastActivityAt.Before(cutoff) {
			delete(s.data, id)
			n++
		}
	}
	return n, nil
}
