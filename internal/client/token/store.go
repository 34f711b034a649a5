package token

import (
	"context"
	"sync"
)

// Store is the durable credential store shared by every session of the same
// user. One key holds the serialized credential; concurrent writers are
// last-write-wins, and sessions re-derive their truth from it at load time.
type Store interface {
	// Load returns the persisted credential, or (nil, nil) when absent.
	Load(ctx context.Context) (*Credential, error)

	// Save persists the credential, replacing any previous value.
	Save(ctx context.Context, c Credential) error

	// Clear removes the credential and sign-out housekeeping keys.
	Clear(ctx context.Context) error
}

// MemoryStore is an in-process Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu   sync.Mutex
	cred *Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *MemoryStore) Save(ctx context.Context, c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &c
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}
