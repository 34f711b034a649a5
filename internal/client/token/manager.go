package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

type initState int

const (
	initIdle initState = iota
	initRunning
	initDone
)

// Manager owns the in-memory credential and identity of one session and the
// shared durable store behind them. The credential and identity are always
// set and cleared together; a caller can never observe an identity without
// the credential that produced it.
type Manager struct {
	store   Store
	log     logging.Logger
	now     func() time.Time
	profile func(ctx context.Context) (*Identity, error)

	mu       sync.Mutex
	cred     *Credential
	identity *Identity
	state    initState
	initErr  error
	ready    chan struct{}
}

func NewManager(store Store, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{store: store, log: log, now: time.Now}
}

// BindProfileFetcher wires the identity lookup used during Initialize,
// typically the auth service's Profile call. Must be called during wiring,
// before Initialize.
func (m *Manager) BindProfileFetcher(fn func(ctx context.Context) (*Identity, error)) {
	m.profile = fn
}

// Initialize restores the persisted credential and derives the identity.
// It is idempotent: the restoration I/O runs once; concurrent and repeated
// callers observe the first run's outcome. Any failure leaves the manager
// signed out (fail closed).
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case initDone:
		err := m.initErr
		m.mu.Unlock()
		return err
	case initRunning:
		ready := m.ready
		m.mu.Unlock()
		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.mu.Lock()
		err := m.initErr
		m.mu.Unlock()
		return err
	}
	m.state = initRunning
	m.ready = make(chan struct{})
	m.mu.Unlock()

	err := m.restore(ctx)

	m.mu.Lock()
	m.state = initDone
	m.initErr = err
	close(m.ready)
	m.mu.Unlock()
	return err
}

func (m *Manager) restore(ctx context.Context) error {
	cred, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore credential: %w", err)
	}
	if cred == nil {
		return nil
	}
	if !cred.Valid(m.now()) {
		// Stale persisted credential: drop it so other sessions stop
		// rehydrating it too.
		if err := m.store.Clear(ctx); err != nil {
			m.log.Warn(ctx, "failed to clear stale credential", "error", err)
		}
		return nil
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	if m.profile == nil {
		m.clear()
		return fmt.Errorf("restore identity: no profile fetcher bound")
	}

	identity, err := m.profile(ctx)
	if err != nil {
		m.clear()
		return fmt.Errorf("restore identity: %w", err)
	}

	m.mu.Lock()
	m.identity = identity
	m.mu.Unlock()
	return nil
}

// SetSession installs a freshly issued credential and identity, persisting
// the credential for other sessions to rehydrate. Explicit login is the only
// path here, so it also marks the manager initialized.
func (m *Manager) SetSession(ctx context.Context, cred Credential, identity Identity) error {
	if err := identity.Role.Validate(); err != nil {
		return err
	}
	if err := m.store.Save(ctx, cred); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	m.mu.Lock()
	m.cred = &cred
	m.identity = &identity
	// A login makes a later Initialize redundant; a restore already in
	// flight keeps ownership of the state transition.
	if m.state == initIdle {
		m.state = initDone
	}
	m.initErr = nil
	m.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether a currently valid credential is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred != nil && m.cred.Valid(m.now())
}

// AccessToken returns the raw bearer token, or "" when signed out.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return ""
	}
	return m.cred.Token
}

// UserData returns a copy of the cached identity, or nil when signed out.
func (m *Manager) UserData() *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	identity := *m.identity
	return &identity
}

// TokenInfo re-derives the validity snapshot, or nil when no credential is
// held. The token bytes themselves are never touched.
func (m *Manager) TokenInfo() *Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil
	}
	now := m.now()
	return &Info{IsValid: m.cred.Valid(now), ExpiresIn: m.cred.ExpiresIn(now)}
}

// ClearTokens drops the in-memory credential and identity together and wipes
// the durable store.
func (m *Manager) ClearTokens(ctx context.Context) error {
	m.clear()
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted credential: %w", err)
	}
	return nil
}

// Logout is ClearTokens plus the audit log line for an explicit or forced
// sign-out.
func (m *Manager) Logout(ctx context.Context) error {
	m.log.Info(ctx, "logging out")
	return m.ClearTokens(ctx)
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.cred = nil
	m.identity = nil
	m.mu.Unlock()
}
