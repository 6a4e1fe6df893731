package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/openid/internal/oidc/http"
	"github.com/aussiebroadwan/openid/internal/oidc/registry"
	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/internal/oidc/store/drivers/sqlite"
	"github.com/aussiebroadwan/openid/pkg/cryptox"
	"github.com/aussiebroadwan/openid/pkg/jwtx"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application wires configuration, storage, keys and services into a
// running HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       *sqlite.Store
	keys     *jwtx.KeyManager
	registry *registry.Registry

	authorizeService    *service.AuthorizeService
	tokenService        *service.TokenService
	userInfoService     *service.UserInfoService
	userService         *service.UserService
	sessionService      *service.SessionService
	claims              *service.ClaimsProvider
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "oidc",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	reg, err := registry.Load(cfg.ClientsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client registry: %w", err)
	}
	app.registry = reg
	app.logger.Info("client registry loaded", "path", cfg.ClientsFile, "clients", reg.Len())

	keys, err := LoadKeys(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.keys = keys

	db, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("database migrations applied successfully")

	app.runDiagnostics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// OpenStore opens the SQLite database and applies migrations.
func OpenStore(cfg Config) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// Diagnostics returns the operator checks for cfg against reg.
func Diagnostics(cfg Config, reg *registry.Registry) service.Diagnostics {
	return service.Diagnostics{
		PublicKeyFile:  cfg.PublicKeyFile,
		PrivateKeyFile: cfg.PrivateKeyFile,
		Registry:       reg,
	}
}

// runDiagnostics logs problems without stopping the server; the keys and
// registry already loaded, so anything reported here is a warning.
func (app *Application) runDiagnostics() {
	for _, d := range Diagnostics(app.cfg, app.registry).Run() {
		if d.Status == service.StatusCritical {
			app.logger.Warn("diagnostic failed", "test", d.Test, "description", d.Description)
			continue
		}
		app.logger.Debug("diagnostic passed", "test", d.Test)
	}
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("oidc provider starting",
		"port", app.cfg.Port,
		"issuer", app.cfg.Issuer,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down oidc provider...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slogx.Err(err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slogx.Err(err))
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slogx.Err(err))
		return err
	}

	app.logger.Info("oidc provider stopped")
	return nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initServices() {
	codes := &service.CodeService{
		Store:        app.db,
		TTL:          app.cfg.CodeTTL,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	consents := &service.ConsentService{
		Store:        app.db,
		TTL:          app.cfg.ConsentTTL,
		StoreTimeout: app.cfg.StoreTimeout,
	}

	app.claims = service.NewClaimsProvider(app.db.Users())
	app.userService = &service.UserService{Store: app.db}
	app.sessionService = &service.SessionService{
		Keys:       app.keys,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.authorizeService = &service.AuthorizeService{
		Registry: app.registry,
		Codes:    codes,
		Consents: consents,
		Claims:   app.claims,
		Sessions: app.sessionService,
		Users:    app.userService,
		Gate: service.CapabilityGate{
			Users:      app.db.Users(),
			Capability: app.cfg.RequiredCapability,
		},
		Keys:        app.keys,
		IDTokenTTL:  app.cfg.IDTokenTTL,
		RequirePKCE: app.cfg.RequirePKCE,
	}
	app.tokenService = &service.TokenService{
		Registry:  app.registry,
		Codes:     codes,
		Keys:      app.keys,
		AccessTTL: app.cfg.AccessTokenTTL,
	}
	app.userInfoService = &service.UserInfoService{Claims: app.claims}

	app.housekeepingService = service.NewHousekeepingService(
		codes,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.CodeGrace,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.AuthorizeService = app.authorizeService
	router.TokenService = app.tokenService
	router.UserInfoService = app.userInfoService
	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.Claims = app.claims
	router.SecureCookies = app.cfg.SecureCookies()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
