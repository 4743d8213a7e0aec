// Package web provides the HTTP API of the staging portal.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/CompanyPortal/internal/config"
	"github.com/JonMunkholm/CompanyPortal/internal/core"
	mw "github.com/JonMunkholm/CompanyPortal/internal/web/middleware"
)

// Server is the HTTP server for the staging portal.
type Server struct {
	service *core.Service
	cache   *core.SnapshotCache
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer creates a server for service. Snapshots for each caller are
// taken from cache.
func NewServer(service *core.Service, cache *core.SnapshotCache, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cache:   cache,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
	s.router.Use(requestMetadata)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.BasicAuth(s.service))

		r.Post("/companies", s.handleSubmit)
		r.Get("/companies", s.handleList)
		r.Delete("/companies/{id}", s.handleDelete)

		r.Post("/bulk/analyze", s.handleBulkAnalyze)
		r.Post("/bulk/confirm", s.handleBulkConfirm)

		r.Post("/purge", s.handlePurge)
		r.Post("/snapshot/refresh", s.handleSnapshotRefresh)
		r.Get("/contributions", s.handleContributions)

		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireAdmin)
			r.Get("/summary", s.handleStatusSummary)
			r.Get("/export", s.handleExport)
			r.Get("/audit", s.handleAuditLog)
		})
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background work.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
