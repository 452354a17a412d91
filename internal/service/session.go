package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps one Controller per open map page.
type SessionStore struct {
	mu       sync.RWMutex
	catalog  *CatalogService
	sessions map[string]*Controller
}

// NewSessionStore creates an empty store backed by catalog.
func NewSessionStore(catalog *CatalogService) *SessionStore {
	return &SessionStore{
		catalog:  catalog,
		sessions: make(map[string]*Controller),
	}
}

// New starts a session and returns its id.
func (s *SessionStore) New() (string, *Controller) {
	id := uuid.NewString()
	c := NewController(s.catalog)

	s.mu.Lock()
	s.sessions[id] = c
	s.mu.Unlock()
	return id, c
}

// Get returns the controller for id and marks it as active.
func (s *SessionStore) Get(id string) (*Controller, bool) {
	s.mu.RLock()
	c, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		c.touch()
	}
	return c, ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *SessionStore) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.sessions {
		if c.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
