// Package session tracks connected console sessions and the fights each
// one owns.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battletracker/internal/game/fight"
)

// Session is one connected console. Its Store is private to the session:
// only the connection's own goroutine touches it.
type Session struct {
	// ID uniquely identifies the session (for logging).
	ID string
	// RemoteAddr is the client's network address.
	RemoteAddr string
	// ConnectedAt is when the session was registered.
	ConnectedAt time.Time
	// Store holds the session's fights.
	Store *fight.Store

	current *fight.Fight
}

// Open makes the fight named name the session's current fight.
//
// Postcondition: Returns fight.ErrFightNotFound and leaves the current fight
// unchanged when no such fight exists.
func (s *Session) Open(name string) (*fight.Fight, error) {
	f, ok := s.Store.Get(name)
	if !ok {
		return nil, fmt.Errorf("opening %q: %w", name, fight.ErrFightNotFound)
	}
	s.current = f
	return f, nil
}

// Current returns the open fight, if it still exists in the Store.
func (s *Session) Current() (*fight.Fight, bool) {
	if s.current == nil {
		return nil, false
	}
	if f, ok := s.Store.Get(s.current.Name()); !ok || f != s.current {
		s.current = nil
		return nil, false
	}
	return s.current, true
}

// SetCurrent opens f directly; nil closes the current fight.
//
// Precondition: f is nil or belongs to s.Store.
func (s *Session) SetCurrent(f *fight.Fight) { s.current = f }

// Manager tracks all active console sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	storeOpts []fight.StoreOption
}

// NewManager creates an empty session Manager. Every session's Store is
// built with storeOpts.
func NewManager(storeOpts ...fight.StoreOption) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		storeOpts: storeOpts,
	}
}

// Add registers a new session with an empty Store.
//
// Postcondition: Returns the created Session with a fresh unique ID.
func (m *Manager) Add(remoteAddr string, at time.Time) *Session {
	sess := &Session{
		ID:          uuid.NewString(),
		RemoteAddr:  remoteAddr,
		ConnectedAt: at,
		Store:       fight.NewStore(m.storeOpts...),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return sess
}

// Remove unregisters the session with the given ID, discarding its fights.
//
// Postcondition: Returns an error if no such session exists.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("session %q not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
