// Package session tracks the live adventure of each user.
package session

import (
	"sync"
	"time"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/history"
)

// Session is a user's live adventure. MessageID names the one message whose
// choices may advance it.
type Session struct {
	UserID    string
	Character character.Character
	History   history.History
	MessageID string
	Choices   []string
	Title     string
	Text      string
	Turn      int
	Locale    string
	StartedAt time.Time
}

// Registry holds at most one session per user. Callers serialize mutations
// per user with a Locker; the registry itself only guards its map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Get returns the user's session.
func (r *Registry) Get(userID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Set replaces the user's session.
func (r *Registry) Set(userID string, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = s
}

// Remove drops the user's session.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// RemoveIf drops the user's session only while it still points at
// messageID, and reports whether it did.
func (r *Registry) RemoveIf(userID, messageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok || s.MessageID != messageID {
		return false
	}
	delete(r.sessions, userID)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
