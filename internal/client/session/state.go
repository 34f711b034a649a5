// Package session runs the once-per-session startup routine that reconciles
// the persisted credential with in-memory state, wires the broadcast bus
// into that state, and watches token validity in the background.
package session

import (
	"sync"

	"github.com/mehmet-raif33/ulasfleet/internal/client/token"
)

// AppState is the per-session view of the signed-in user. It is owned by a
// single session: other sessions influence it only through broadcast
// messages handled by this session's own goroutines, never directly.
type AppState struct {
	mu            sync.RWMutex
	identity      *token.Identity
	authenticated bool
}

func NewAppState() *AppState {
	return &AppState{}
}

// SetIdentity adopts the identity and flips the session to authenticated.
func (s *AppState) SetIdentity(identity token.Identity) {
	s.mu.Lock()
	s.identity = &identity
	s.authenticated = true
	s.mu.Unlock()
}

// Clear drops the identity and the authenticated flag together.
func (s *AppState) Clear() {
	s.mu.Lock()
	s.identity = nil
	s.authenticated = false
	s.mu.Unlock()
}

// Identity returns a copy of the adopted identity, or nil.
func (s *AppState) Identity() *token.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

func (s *AppState) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}
