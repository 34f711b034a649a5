package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
	"github.com/mehmet-raif33/ulasfleet/internal/client/bus"
	"github.com/mehmet-raif33/ulasfleet/internal/client/fleet"
	"github.com/mehmet-raif33/ulasfleet/internal/client/session"
	"github.com/mehmet-raif33/ulasfleet/internal/client/token"
	"github.com/mehmet-raif33/ulasfleet/internal/common"
	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

// newTestApp wires an App against a scripted HTTP handler, an in-memory
// credential store and an in-process bus, with stdin replaced by script.
func newTestApp(t *testing.T, handler http.HandlerFunc, script string) (*App, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := bus.NewHub().Session("cli-test")
	t.Cleanup(func() { _ = b.Close() })

	tokens := token.NewManager(token.NewMemoryStore(), nil)
	client := api.NewClient(srv.URL, api.Options{
		Tokens:      tokens,
		Notifier:    &bus.TokenExpiryNotifier{Bus: b},
		BackoffBase: time.Millisecond,
	})
	auth := fleet.NewAuthService(client, tokens, b, nil)
	tokens.BindProfileFetcher(auth.Profile)

	out := &bytes.Buffer{}
	return &App{
		log:      logging.Nop(),
		tokens:   tokens,
		bus:      b,
		state:    session.NewAppState(),
		nav:      session.NewMemoryNavigator(),
		auth:     auth,
		vehicles: fleet.NewVehicleService(client),
		health:   fleet.NewHealthService(client),
		reader:   bufio.NewReader(strings.NewReader(script)),
		out:      out,
	}, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return []byte(pw), nil }
}

func TestApp_LoginCommand(t *testing.T) {
	stubPassword(t, "hunter2")
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "welcome",
			"user":    token.Identity{ID: "u1", Email: "a@b.com", Name: "Ada", Role: token.RoleUser},
			"token":   "tok-1",
		})
	}, "a@b.com\n")

	require.NoError(t, app.Login(context.Background()))

	assert.True(t, app.isLoggedIn())
	assert.True(t, app.tokens.IsAuthenticated())
	assert.Equal(t, session.RouteDashboard, app.nav.Current())
	assert.Contains(t, out.String(), "Welcome, Ada (user)")
	assert.Equal(t, "a@b.com", app.status(), "prompt shows the signed-in user")
}

func TestApp_LoginFailureStaysSignedOut(t *testing.T) {
	stubPassword(t, "wrong")
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid credentials"}`))
	}, "a@b.com\n")

	require.Error(t, app.Login(context.Background()))

	assert.False(t, app.isLoggedIn())
	assert.Equal(t, session.RouteLogin, app.nav.Current())
	assert.Contains(t, out.String(), "invalid credentials")
}

func TestApp_VehiclesCommand(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vehicles", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []fleet.Vehicle{
				{ID: "v1", Plate: "34 ABC 01", Brand: "Ford", Model: "Transit", Year: 2021, Status: "active"},
			},
			"pagination": api.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
		})
	}, "")
	seedSession(t, app)

	require.NoError(t, app.Vehicles(context.Background()))
	assert.Contains(t, out.String(), "34 ABC 01")
	assert.Contains(t, out.String(), "page 1/1 (1 total)")
}

func TestApp_HealthCommandNeedsNoSession(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": fleet.HealthStatus{Status: "ok"}})
	}, "")

	require.NoError(t, app.Health(context.Background()))
	assert.Contains(t, out.String(), "Service status: ok")
}

func TestApp_LogoutCommand(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout must not touch the network")
	}, "")
	seedSession(t, app)
	require.True(t, app.isLoggedIn())

	require.NoError(t, app.Logout(context.Background()))

	assert.False(t, app.isLoggedIn())
	assert.False(t, app.tokens.IsAuthenticated())
	assert.Equal(t, session.RouteLogin, app.nav.Current())
	assert.Contains(t, out.String(), "Logged out")
}

func TestApp_AuthedCommandsRequireLogin(t *testing.T) {
	app, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("signed-out commands must not reach the network")
	}, "")

	err := app.Vehicles(context.Background())
	require.ErrorIs(t, err, common.ErrNotLoggedIn)
	assert.Contains(t, out.String(), "Not logged in")
}

// seedSession installs a signed-in session without going through Login.
func seedSession(t *testing.T, app *App) {
	t.Helper()
	identity := token.Identity{ID: "u1", Email: "a@b.com", Name: "Ada", Role: token.RoleUser}
	cred := token.NewCredential("tok-1", time.Now())
	require.NoError(t, app.tokens.SetSession(context.Background(), cred, identity))
	app.state.SetIdentity(identity)
	app.nav.NavigateTo(session.RouteDashboard)
}
