package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	httpapi "github.com/aussiebroadwan/sataplan/internal/sataplan/http"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store/drivers/sqlite"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/kvx"
	"github.com/aussiebroadwan/sataplan/pkg/qrx"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// KV namespaces of the token state stores.
const (
	namespaceConsumed     = "consumed"
	namespaceGoalPassword = "goal_password"
)

// Application wires the sataplan service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// now is the single clock shared by the codec, the ledger and every
	// issuer, so expiry decisions always agree.
	now func() time.Time

	// Core dependencies
	db         store.Store
	redis      redis.UniversalClient // nil unless the state backend is redis
	stateCheck func(ctx context.Context) error
	codec      *jwtx.Codec
	ledger     *access.Ledger
	passwords  *access.GoalPasswords
	gate       *access.Gate

	// Services
	userService         *service.UserService
	sessionService      *service.SessionService
	goalService         *service.GoalService
	shareService        *service.ShareService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// Option adjusts an Application before it is wired.
type Option func(*Application)

// WithClock replaces time.Now as the shared clock.
func WithClock(now func() time.Time) Option {
	return func(app *Application) { app.now = now }
}

// WithLogger replaces the logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(app *Application) { app.logger = l }
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil {
		app.logger = slogx.New(slogx.Config{
			Service: "sataplan",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		})
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initState(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("sataplan starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"state_backend", app.cfg.StateBackend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down sataplan...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("sataplan stopped")
	return nil
}

// Close releases the stores of an application that was never Run.
func (app *Application) Close() error { return app.closeStores() }

func (app *Application) closeStores() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initState picks the store behind the consumption ledger and the goal
// passwords.
func (app *Application) initState() error {
	var consumed, passwords kvx.Store

	switch app.cfg.StateBackend {
	case StateBackendMemory:
		// Single process only; one-time tokens reset on restart
		consumed = kvx.NewMemory(kvx.MemoryConfig{Size: app.cfg.StateCacheSize, Now: app.now})
		passwords = kvx.NewMemory(kvx.MemoryConfig{Size: app.cfg.StateCacheSize, Now: app.now})

	case StateBackendSQLite:
		consumed = app.db.KV(namespaceConsumed)
		passwords = app.db.KV(namespaceGoalPassword)
		app.stateCheck = app.db.Ping

	case StateBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
		}

		app.redis = client
		consumed = kvx.NewRedis(client, namespaceConsumed, app.now)
		passwords = kvx.NewRedis(client, namespaceGoalPassword, app.now)
		app.stateCheck = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	app.ledger = access.NewLedger(consumed, app.now)
	app.passwords = access.NewGoalPasswords(passwords, app.cfg.GoalPasswordTTL, app.now)

	app.logger.Info("token state store ready", "backend", app.cfg.StateBackend)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	codec, err := jwtx.NewCodec([]byte(app.cfg.SecretKey), app.cfg.Algorithm, app.now)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec
	app.gate = access.NewGate(codec, app.ledger)

	app.userService = &service.UserService{Store: app.db}
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Issuer: access.NewSessionIssuer(codec, app.gate, app.now),
	}
	app.goalService = &service.GoalService{
		Store:     app.db,
		Passwords: app.passwords,
	}
	app.shareService = &service.ShareService{
		Store:   app.db,
		Scoped:  access.NewScopedIssuer(codec, app.passwords, app.now),
		Gate:    app.gate,
		QR:      qrx.NewEncoder(),
		BaseURL: app.cfg.BaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		map[string]service.Sweeper{
			namespaceConsumed:     app.ledger,
			namespaceGoalPassword: app.passwords,
		},
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.gate,
		BuildVersion,
		app.db,
		app.logger,
		httpx.ParseOrigins(app.cfg.CORSOrigin),
	)

	router.StateCheck = app.stateCheck
	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.GoalService = app.goalService
	router.ShareService = app.shareService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
