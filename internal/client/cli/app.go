// Package cli is the terminal shell of the fleet dashboard client: a small
// REPL over the feature services, wired together from the runtime config.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
	"github.com/mehmet-raif33/ulasfleet/internal/client/bus"
	"github.com/mehmet-raif33/ulasfleet/internal/client/config"
	"github.com/mehmet-raif33/ulasfleet/internal/client/fleet"
	"github.com/mehmet-raif33/ulasfleet/internal/client/session"
	"github.com/mehmet-raif33/ulasfleet/internal/client/token"
	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

// App owns the wired component graph for one client session.
type App struct {
	config *config.Config
	log    logging.Logger

	tokens *token.Manager
	bus    bus.Bus
	init   *session.Initializer
	state  *session.AppState
	nav    session.Navigator

	auth         *fleet.AuthService
	vehicles     *fleet.VehicleService
	personnel    *fleet.PersonnelService
	transactions *fleet.TransactionService
	categories   *fleet.CategoryService
	activities   *fleet.ActivityService
	health       *fleet.HealthService

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the client from config. An empty RedisAddr keeps the
// credential store in sqlite and the broadcast bus in-process; setting it
// moves both to redis so separate processes share one session.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	sessionID := uuid.NewString()

	var store token.Store
	var b bus.Bus
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = token.NewRedisStore(rdb, "ulasfleet")
		redisBus, err := bus.NewRedisBus(ctx, rdb, cfg.BusChannel, sessionID, log)
		if err != nil {
			return nil, err
		}
		b = redisBus
	} else {
		db, err := token.OpenDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		store = token.NewSQLiteStore(db)
		b = bus.NewHub().Session(sessionID)
	}

	tokens := token.NewManager(store, log)
	client := api.NewClient(cfg.ServerBaseURL, api.Options{
		Tokens:     tokens,
		Notifier:   &bus.TokenExpiryNotifier{Bus: b, Log: log},
		Log:        log,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	auth := fleet.NewAuthService(client, tokens, b, log)
	tokens.BindProfileFetcher(auth.Profile)

	state := session.NewAppState()
	nav := session.NewMemoryNavigator()
	init := session.New(tokens, b, nav, state, log, session.Config{
		CheckInterval:    cfg.TokenCheckInterval,
		ExpiryWarnWindow: cfg.ExpiryWarnWindow,
	})

	return &App{
		config:       cfg,
		log:          log,
		tokens:       tokens,
		bus:          b,
		init:         init,
		state:        state,
		nav:          nav,
		auth:         auth,
		vehicles:     fleet.NewVehicleService(client),
		personnel:    fleet.NewPersonnelService(client),
		transactions: fleet.NewTransactionService(client),
		categories:   fleet.NewCategoryService(client),
		activities:   fleet.NewActivityService(client),
		health:       fleet.NewHealthService(client),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

// Run restores the session, drives the REPL until exit, then tears the
// session machinery down.
func (a *App) Run(ctx context.Context) error {
	if err := a.init.Start(ctx); err != nil {
		a.log.Warn(ctx, "starting signed out", "error", err)
	}
	defer a.init.Stop()
	defer func() { _ = a.bus.Close() }()

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.state.Authenticated()
}

// status renders the prompt suffix: the signed-in user or the current route.
func (a *App) status() string {
	if identity := a.state.Identity(); identity != nil {
		return identity.Email
	}
	return string(a.nav.Current())
}
