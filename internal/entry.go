// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/reconnect/internal/api"
	"github.com/starford/reconnect/internal/contactservice"
	"github.com/starford/reconnect/internal/mcpserver"
	"github.com/starford/reconnect/internal/settings"
	"github.com/starford/reconnect/internal/sse"
	"github.com/starford/reconnect/internal/store"
	"github.com/starford/reconnect/internal/templates"
)

// Version is reported by the MCP server.
const Version = "1.0.0"

// runtime is the wired application shared by all commands.
type runtime struct {
	cfg       *Config
	logger    *slog.Logger
	db        *store.DB
	templates *templates.Provider
	broker    *sse.Broker
	svc       *contactservice.Service
}

func (rt *runtime) Close() {
	if rt.broker != nil {
		rt.broker.Close()
	}
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close database", slog.String("error", err.Error()))
	}
}

// setup applies opts and opens everything the commands need. Logs go to
// logOut; the MCP command passes stderr because stdout carries the protocol.
func setup(ctx context.Context, logOut io.Writer, withBroker bool, opts ...Option) (*runtime, error) {
	app := &application{now: time.Now}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("templates_path", cfg.Templates.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	// Reconcile lastContactedAt with the ledger.
	if n, err := db.RebuildProjection(ctx); err != nil {
		logger.Warn("projection rebuild failed", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Warn("projection rebuilt", slog.Int("contacts_fixed", n))
	}

	sm, err := settings.NewManager(ctx, db, cfg.Settings.Defaults())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init settings: %w", err)
	}

	tp, err := templates.New(cfg.Templates.Path, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init templates: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, db: db, templates: tp}

	svcOpts := []contactservice.Option{
		contactservice.WithClock(app.now),
		contactservice.WithLogger(logger),
	}
	if withBroker {
		rt.broker = sse.NewBroker(2 * time.Second)
		svcOpts = append(svcOpts, contactservice.WithNotifier(rt.broker))
	}
	rt.svc = contactservice.New(db, sm, tp, svcOpts...)
	return rt, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(ctx, os.Stdout, true, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger, broker := rt.cfg, rt.logger, rt.broker

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Mount("/health", api.HealthRouter(func(req *http.Request) error {
		return rt.svc.Ping(req.Context())
	}))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Hot-reload message templates and tell clients.
	g.Go(func() error {
		err := rt.templates.Watch(gCtx, func() {
			broker.PublishChange(sse.TemplatesReloaded, "")
		})
		if err != nil {
			logger.Warn("template watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stop the template watcher too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup once the server has been shut down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := setup(ctx, os.Stderr, false, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, Version).ServeStdio()
}

// RunSeed inserts the demo contacts into an empty database and exits.
func RunSeed(ctx context.Context, opts ...Option) error {
	rt, err := setup(ctx, os.Stderr, false, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	created, err := rt.svc.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	rt.logger.Info("seed finished", slog.Int("created", len(created)))
	return nil
}
