package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-library-admin/components/admin"
	"github.com/goliatone/go-library-admin/components/admin/commands"
	"github.com/goliatone/go-library-admin/components/admin/gorouter"
	"github.com/goliatone/go-library-admin/components/admin/httpapi"
	"github.com/goliatone/go-library-admin/components/admin/queries"
	"github.com/goliatone/go-library-admin/pkg/activity"
	"github.com/goliatone/go-library-admin/pkg/activity/usersink"
	"github.com/goliatone/go-library-admin/pkg/config"
	"github.com/goliatone/go-library-admin/pkg/library"
	"github.com/goliatone/go-library-admin/pkg/metrics"
)

type serveCmd struct {
	Config      string `type:"path" env:"LIBADMIN_CONFIG" help:"YAML config file."`
	EnvFile     string `default:".env" help:"Dotenv file loaded before LIBADMIN_* overrides."`
	Addr        string `help:"Listen address (overrides config)."`
	Transport   string `help:"Transport: http or fiber (overrides config)."`
	SeedFile    string `type:"path" help:"Seed manifest (overrides config)."`
	LogActivity bool   `help:"Log catalog activity records."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cmd.Config, cmd.EnvFile)
	if err != nil {
		return err
	}
	cmd.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := config.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	app, err := newApp(cfg, logger, cmd.LogActivity)
	if err != nil {
		return err
	}
	go app.maintain(ctx, cfg.Session.SweepInterval)

	if cfg.Server.Transport == config.TransportFiber {
		return app.serveFiber(ctx)
	}
	return app.serveHTTP(ctx)
}

func (cmd *serveCmd) apply(cfg *config.Config) {
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
	}
	if cmd.SeedFile != "" {
		cfg.Catalog.SeedFile = cmd.SeedFile
	}
}

type app struct {
	cfg        config.Config
	logger     *slog.Logger
	service    *admin.Service
	store      *admin.InMemoryWorkspaceStore
	broadcast  *admin.BroadcastHook
	metrics    *metrics.Telemetry
	controller *admin.Controller
	limiter    *httpapi.RateLimiter
	commands   gorouter.Commands
	state      *queries.StateQuery
	refresh    *commands.RefreshCatalogCommand
}

func newApp(cfg config.Config, logger *slog.Logger, logActivity bool) (*app, error) {
	seed := admin.DefaultSeed()
	if cfg.Catalog.SeedFile != "" {
		doc, err := admin.ReadSeedManifest(cfg.Catalog.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = doc.Seed()
	}

	prom := metrics.New()
	telemetry := admin.MultiTelemetry{admin.LogTelemetry{Logger: logger}, prom}
	broadcast := admin.NewBroadcastHook()
	store := admin.NewInMemoryWorkspaceStore(
		admin.WithWorkspaceSeed(seed),
		admin.WithWorkspaceLifetime(cfg.Session.Lifetime),
	)
	registry := admin.NewRegistry(
		admin.WithChartCache(admin.NewChartCache(cfg.Charts.CacheTTL)),
		admin.WithChartTheme(cfg.Charts.Theme),
		admin.WithChartAssetsHost(cfg.Charts.AssetsHost),
	)
	if err := registry.ApplyHooks(); err != nil {
		return nil, fmt.Errorf("libadmin: panel hooks: %w", err)
	}

	opts := library.Options{
		Store:            store,
		Seed:             &seed,
		Providers:        registry,
		RefreshHook:      broadcast,
		Telemetry:        telemetry,
		PlaceholderImage: cfg.Catalog.PlaceholderImage,
	}
	if logActivity {
		opts.ActivityHooks = activity.Hooks{usersink.Hook{Sink: logActivitySink{logger: logger}}}
		opts.ActivityConfig = activity.Config{Enabled: true}
	}
	service := library.NewService(opts)

	renderer, err := admin.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("libadmin: template renderer: %w", err)
	}
	controller := admin.NewController(admin.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		BasePath: cfg.Server.BasePath,
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		store:      store,
		broadcast:  broadcast,
		metrics:    prom,
		controller: controller,
		limiter:    httpapi.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger),
		commands: gorouter.Commands{
			SelectPanel: commands.NewSelectPanelCommand(service, telemetry),
			Submit:      commands.NewSubmitBookCommand(service, telemetry),
			Draft:       commands.NewUpdateDraftCommand(service),
			Edit:        commands.NewBeginEditCommand(service, telemetry),
			Cancel:      commands.NewCancelEditCommand(service),
			Delete:      commands.NewDeleteBookCommand(service, telemetry),
		},
		state:   queries.NewStateQuery(service),
		refresh: commands.NewRefreshCatalogCommand(service, telemetry),
	}, nil
}

func (a *app) httpHandler() (http.Handler, error) {
	handlers := &httpapi.Handlers{
		SelectPanel: a.commands.SelectPanel,
		Submit:      a.commands.Submit,
		Draft:       a.commands.Draft,
		Edit:        a.commands.Edit,
		Cancel:      a.commands.Cancel,
		Delete:      a.commands.Delete,
		State:       a.state,
		Page:        a.controller,
		Events:      a.broadcast,
	}
	return httpapi.NewRouter(httpapi.RouterConfig{
		BasePath: a.cfg.Server.BasePath,
		Handlers: handlers,
		Sessions: httpapi.NewSCSSessions(httpapi.SessionConfig{
			CookieName: a.cfg.Session.CookieName,
			Lifetime:   a.cfg.Session.Lifetime,
			Secure:     a.cfg.Session.Secure,
		}),
		Logger:        a.logger,
		RateLimiter:   a.limiter,
		Metrics:       a.metrics.Handler(),
		Observer:      a.metrics,
		SecureCookies: a.cfg.Session.Secure,
		DisableCSRF:   a.cfg.Server.DisableCSRF,
	})
}

func (a *app) serveHTTP(ctx context.Context) error {
	handler, err := a.httpHandler()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.cfg.Server.Addr, "transport", "http", "environment", a.cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("libadmin: shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

func (a *app) serveFiber(ctx context.Context) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:       server.Router(),
		Controller:   a.controller,
		Commands:     a.commands,
		State:        a.state,
		Broadcast:    a.broadcast,
		BasePath:     a.cfg.Server.BasePath,
		CookieName:   a.cfg.Session.CookieName,
		SecureCookie: a.cfg.Session.Secure,
	}); err != nil {
		return fmt.Errorf("libadmin: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.cfg.Server.Addr, "transport", "fiber", "environment", a.cfg.Server.Env)
		errCh <- server.Serve(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// maintain sweeps expired workspaces and idle rate limiters until ctx is done.
func (a *app) maintain(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx, interval)
		}
	}
}

func (a *app) sweep(ctx context.Context, idle time.Duration) {
	expired := a.store.Sweep()
	clients := a.limiter.Cleanup(idle)
	if expired == 0 {
		return
	}
	a.logger.Debug("swept workspaces", "expired", expired, "limiters", clients)
	err := a.refresh.Execute(ctx, commands.RefreshCatalogInput{Event: admin.CatalogEvent{Reason: "expired"}})
	if err != nil {
		a.logger.Warn("refresh after sweep failed", "error", err)
	}
}
