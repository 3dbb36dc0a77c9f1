package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/cookielog/internal/config"
	"github.com/JonMunkholm/cookielog/internal/core"
	"github.com/JonMunkholm/cookielog/internal/logging"
	"github.com/JonMunkholm/cookielog/internal/metrics"
	_ "github.com/JonMunkholm/cookielog/internal/schema" // Register all schemas
	"github.com/JonMunkholm/cookielog/internal/store"
	"github.com/JonMunkholm/cookielog/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"parse_max_concurrent", cfg.Parse.MaxConcurrent,
		"metrics", cfg.Metrics.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()
	opts := web.Options{}

	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.New()
	}

	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		pool, err = store.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		opts.Store = store.New(pool)
		if err := opts.Store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to database")
	}

	slog.Info("schemas registered", "count", core.Count())
	for _, d := range core.All() {
		slog.Debug("schema", "name", d.Name(), "header", d.Header())
	}

	server := web.NewServer(cfg, opts)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight parses to complete (with timeout)
		if status := server.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for parses to complete", "active", status.Active)
			if err := server.WaitForParses(shutdownCtx); err != nil {
				slog.Warn("parses did not complete in time", "error", err)
			} else {
				slog.Info("all parses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
