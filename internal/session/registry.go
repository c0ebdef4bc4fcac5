package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks at most one open session per user. It exists for the API
// layer: sessions are ephemeral, in-memory state, and starting a new session
// tears down whatever the user had open before.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Manager
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Manager)}
}

// Get returns the user's open session, or nil if none.
func (r *Registry) Get(userID uuid.UUID) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// Put registers a session for the user, closing any previous one so its
// timers cannot fire into a dead session.
func (r *Registry) Put(userID uuid.UUID, m *Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[userID]; ok {
		old.Close()
	}
	r.sessions[userID] = m
}

// Remove closes and forgets the user's session, if any.
func (r *Registry) Remove(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[userID]; ok {
		old.Close()
		delete(r.sessions, userID)
	}
}
