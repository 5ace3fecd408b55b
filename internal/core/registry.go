package core

import (
	"fmt"
	"streammeter/internal/idgen"
	"sync"
	"time"
)

// Registry holds all currently active sessions keyed by session ID.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create allocates a fresh session for the given user and content,
// timestamps it at the instant of the call and inserts it into the
// registry. IDs are generated from a UUID, so a collision is an
// invariant violation rather than a recoverable condition.
func (r *Registry) Create(userID, contentID string) *Session {
	session := &Session{
		ID:        idgen.NewSession(),
		UserID:    userID,
		ContentID: contentID,
		StartTime: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		panic(fmt.Sprintf("session ID collision: %s", session.ID))
	}
	r.sessions[session.ID] = session

	return session
}

// Get returns the session with the given ID, if present
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	return session, ok
}

// Remove atomically removes and returns the session with the given ID.
// A second removal of the same ID reports not-found.
func (r *Registry) Remove(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	return session, true
}

// ListActive returns all active sessions in no particular order
func (r *Registry) ListActive() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of active sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
