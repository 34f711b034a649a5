package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mehmet-raif33/ulasfleet/internal/client/bus"
	"github.com/mehmet-raif33/ulasfleet/internal/client/token"
	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

// State is the initializer lifecycle. Ready is terminal: once reached, the
// session's auth state changes only through the bus or explicit user
// action, never by re-running the restoration.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

const (
	defaultCheckInterval = 30 * time.Second
	defaultWarnWindow    = time.Minute
)

// TokenManager is the slice of the token manager the session layer depends
// on; *token.Manager satisfies it.
type TokenManager interface {
	Initialize(ctx context.Context) error
	IsAuthenticated() bool
	UserData() *token.Identity
	TokenInfo() *token.Info
	ClearTokens(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Config tunes the background token watcher. Zero values use the defaults
// (check every 30s, warn within the final minute).
type Config struct {
	CheckInterval    time.Duration
	ExpiryWarnWindow time.Duration

	// OnSessionUpdate, when set, receives SESSION_UPDATE payloads.
	OnSessionUpdate func(payload json.RawMessage)
}

// Initializer reconciles the persisted credential with the session's
// in-memory state exactly once per session, then keeps the two aligned via
// bus subscriptions and a validity watcher until Stop.
type Initializer struct {
	tokens          TokenManager
	bus             bus.Bus
	nav             Navigator
	app             *AppState
	log             logging.Logger
	checkInterval   time.Duration
	warnWindow      time.Duration
	onSessionUpdate func(payload json.RawMessage)

	mu      sync.Mutex
	state   State
	ready   chan struct{}
	initErr error
	stopped bool

	unsubs      []func()
	cancelWatch context.CancelFunc
	watchDone   chan struct{}
}

func New(tokens TokenManager, b bus.Bus, nav Navigator, app *AppState, log logging.Logger, cfg Config) *Initializer {
	if log == nil {
		log = logging.Nop()
	}
	i := &Initializer{
		tokens:          tokens,
		bus:             b,
		nav:             nav,
		app:             app,
		log:             log,
		checkInterval:   cfg.CheckInterval,
		warnWindow:      cfg.ExpiryWarnWindow,
		onSessionUpdate: cfg.OnSessionUpdate,
	}
	if i.checkInterval <= 0 {
		i.checkInterval = defaultCheckInterval
	}
	if i.warnWindow <= 0 {
		i.warnWindow = defaultWarnWindow
	}
	return i
}

// State returns the current lifecycle phase.
func (i *Initializer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Start performs the once-per-session restoration, subscribes the bus
// handlers, and launches the validity watcher. Concurrent callers do not
// repeat the restoration I/O: late ones wait for Ready and observe the
// first run's outcome. Any restoration failure leaves the session signed
// out (fail closed) while Ready is still reached.
func (i *Initializer) Start(ctx context.Context) error {
	i.mu.Lock()
	switch i.state {
	case StateReady:
		err := i.initErr
		i.mu.Unlock()
		return err
	case StateInitializing:
		ready := i.ready
		i.mu.Unlock()
		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		i.mu.Lock()
		err := i.initErr
		i.mu.Unlock()
		return err
	}
	i.state = StateInitializing
	i.ready = make(chan struct{})
	i.mu.Unlock()

	err := i.restore(ctx)

	i.subscribe()

	// The watcher is launched only here, after restoration has finished,
	// so it can never act on partially-initialized state.
	watchCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go i.watch(watchCtx, done)

	i.mu.Lock()
	i.cancelWatch = cancel
	i.watchDone = done
	i.initErr = err
	i.state = StateReady
	close(i.ready)
	i.mu.Unlock()
	return err
}

// Stop cancels the watcher and detaches the bus handlers. Idempotent.
func (i *Initializer) Stop() {
	i.mu.Lock()
	if i.state != StateReady || i.stopped {
		i.mu.Unlock()
		return
	}
	i.stopped = true
	cancel := i.cancelWatch
	done := i.watchDone
	unsubs := i.unsubs
	i.unsubs = nil
	i.mu.Unlock()

	cancel()
	<-done
	for _, unsubscribe := range unsubs {
		unsubscribe()
	}
}

// restore adopts the persisted session or fails closed to signed-out.
func (i *Initializer) restore(ctx context.Context) error {
	err := i.tokens.Initialize(ctx)
	if err == nil && i.tokens.IsAuthenticated() {
		if identity := i.tokens.UserData(); identity != nil {
			i.app.SetIdentity(*identity)
			i.leaveLoginRoute()
			i.log.Info(ctx, "session restored", "user", identity.Email, "role", identity.Role)
			return nil
		}
	}
	if err != nil {
		i.log.Warn(ctx, "session restore failed, treating as signed out", "error", err)
	}

	i.app.Clear()
	if cerr := i.tokens.ClearTokens(ctx); cerr != nil {
		i.log.Warn(ctx, "failed to clear tokens during fail-closed restore", "error", cerr)
	}
	if requiresAuth(i.nav.Current()) {
		i.nav.NavigateTo(RouteLogin)
	}
	return err
}

func (i *Initializer) subscribe() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.unsubs = append(i.unsubs,
		i.bus.Listen(bus.TypeLogin, i.onLogin),
		i.bus.Listen(bus.TypeLogout, func(bus.Message) {
			i.forceSignOut("signed out in another session")
		}),
		i.bus.Listen(bus.TypeTokenExpired, func(bus.Message) {
			i.forceSignOut("session expired")
		}),
		i.bus.Listen(bus.TypeSessionUpdate, i.onSessionUpdateMsg),
	)
}

// onLogin adopts the identity another session just signed in with. The
// credential itself lives in the shared store; this session keeps reading
// it from there.
func (i *Initializer) onLogin(m bus.Message) {
	ctx := context.Background()

	var identity token.Identity
	if err := json.Unmarshal(m.Payload, &identity); err != nil {
		i.log.Warn(ctx, "dropping malformed login broadcast", "error", err)
		return
	}
	i.app.SetIdentity(identity)
	i.leaveLoginRoute()
	i.log.Info(ctx, "adopted login from another session", "user", identity.Email)
}

// forceSignOut clears this session's auth state in reaction to a logout or
// expiry elsewhere. The reason only differentiates the diagnostics.
func (i *Initializer) forceSignOut(reason string) {
	ctx := context.Background()

	i.app.Clear()
	if err := i.tokens.ClearTokens(ctx); err != nil {
		i.log.Warn(ctx, "failed to clear tokens", "error", err)
	}
	i.nav.NavigateTo(RouteLogin)
	i.log.Info(ctx, "signed out", "reason", reason)
}

// onSessionUpdateMsg is advisory only: it never changes auth state.
func (i *Initializer) onSessionUpdateMsg(m bus.Message) {
	i.log.Debug(context.Background(), "session update received", "sender", m.Sender)
	if i.onSessionUpdate != nil {
		i.onSessionUpdate(m.Payload)
	}
}

func (i *Initializer) leaveLoginRoute() {
	if !requiresAuth(i.nav.Current()) {
		i.nav.NavigateTo(RouteDashboard)
	}
}

// watch polls token validity while the session is authenticated. An invalid
// credential forces a logout exactly once (the session stops being
// authenticated, so later ticks are no-ops); a credential inside the warn
// window only produces a warning.
func (i *Initializer) watch(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(i.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !i.app.Authenticated() {
				continue
			}
			info := i.tokens.TokenInfo()
			if info == nil || !info.IsValid {
				i.app.Clear()
				if err := i.tokens.Logout(context.Background()); err != nil {
					i.log.Warn(ctx, "forced logout failed to clear tokens", "error", err)
				}
				i.nav.NavigateTo(RouteLogin)
				i.log.Info(ctx, "credential no longer valid, forcing logout")
				continue
			}
			if info.ExpiresIn > 0 && info.ExpiresIn < i.warnWindow {
				i.log.Warn(ctx, "credential expiring soon", "expires_in", info.ExpiresIn)
			}
		}
	}
}
