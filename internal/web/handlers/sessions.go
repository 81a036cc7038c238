package handlers

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-finder/internal/match"
)

// SessionRegistry maps session IDs to the reference each session owns.
// One session holds exactly one reference; loading a new reference means
// opening a new session. References are immutable once stored, so reads
// need no copying.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*match.Reference
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*match.Reference),
	}
}

// Create stores the reference under a fresh session ID.
func (r *SessionRegistry) Create(ref *match.Reference) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = ref
	r.mu.Unlock()
	return id
}

// Get returns the session's reference, or nil if the session is unknown.
func (r *SessionRegistry) Get(id string) *match.Reference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Delete closes a session. Deleting an unknown session is a no-op.
func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
