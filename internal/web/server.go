// Package web provides the HTTP API for parsing documents and querying
// cookie activity.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/cookielog/internal/config"
	"github.com/JonMunkholm/cookielog/internal/core"
	"github.com/JonMunkholm/cookielog/internal/metrics"
	"github.com/JonMunkholm/cookielog/internal/store"
	weblog "github.com/JonMunkholm/cookielog/internal/web/middleware"
)

// Server is the HTTP server for the parsing API.
type Server struct {
	cfg     *config.Config
	limiter *core.ParseLimiter
	metrics *metrics.Recorder // nil when metrics are disabled
	store   *store.Store      // nil when persistence is disabled
	router  *chi.Mux
	server  *http.Server
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Metrics *metrics.Recorder
	Store   *store.Store
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, opts Options) *Server {
	s := &Server{
		cfg:     cfg,
		limiter: core.NewParseLimiter(cfg.Parse.MaxConcurrent, cfg.Parse.MaxWaitTime),
		metrics: opts.Metrics,
		store:   opts.Store,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/schemas", s.handleListSchemas)
		r.Post("/parse/{schema}", s.handleParse)
		r.Post("/cookies/most-active", s.handleMostActive)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// LimiterStatus reports parse slot usage.
func (s *Server) LimiterStatus() core.LimiterStatus {
	return s.limiter.Status()
}

// WaitForParses blocks until in-flight parses finish or ctx ends.
func (s *Server) WaitForParses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
