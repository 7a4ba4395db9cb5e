// Package web provides the HTTP API and HTMX page for the data cleaner.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/uploads"
	"github.com/JonMunkholm/datacleaner/internal/web/middleware"
)

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Service *core.Service
	Store   uploads.Store
	Runs    uploads.RunRecorder // optional
	Limiter *core.Limiter       // optional
}

// Server is the HTTP server for the cleaning pipeline.
type Server struct {
	cfg     *config.Config
	service *core.Service
	store   uploads.Store
	runs    uploads.RunRecorder
	limiter *core.Limiter

	router *chi.Mux
	server *http.Server

	generalLimit *middleware.RateLimiter
	uploadLimit  *middleware.RateLimiter
}

// NewServer wires routes and middleware. Missing optional deps get no-op or
// config-derived defaults.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		service: deps.Service,
		store:   deps.Store,
		runs:    deps.Runs,
		limiter: deps.Limiter,
		router:  chi.NewRouter(),
	}
	if s.runs == nil {
		s.runs = uploads.NopRecorder{}
	}
	if s.limiter == nil {
		s.limiter = core.NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	}
	if cfg.Rate.Enabled {
		s.generalLimit = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute)
		s.uploadLimit = middleware.NewRateLimiter(cfg.Rate.UploadLimit)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(middleware.CORS(s.cfg.Server.AllowedOrigins))

	if s.generalLimit != nil {
		s.router.Use(s.generalLimit.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", s.handleHealth)

	s.router.Get("/uploads", s.handleListUploads)
	s.router.With(s.uploadLimited).Post("/uploads", s.handleUpload)

	s.router.Route("/clean", func(r chi.Router) {
		r.Post("/preview", s.handlePreview)
		r.With(s.uploadLimited).Post("/process", s.handleProcess)
		r.Get("/download", s.handleDownload)
	})
}

// uploadLimited applies the stricter per-client limit to expensive routes.
func (s *Server) uploadLimited(next http.Handler) http.Handler {
	if s.uploadLimit == nil {
		return next
	}
	return s.uploadLimit.Middleware(next)
}

// Start listens on the configured address and blocks until the server stops.
// Rate limiter sweeps run until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	for _, rl := range []*middleware.RateLimiter{s.generalLimit, s.uploadLimit} {
		if rl != nil {
			go rl.RunCleanup(ctx)
		}
	}

	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then waits for in-flight cleaning work.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if status := s.limiter.Status(); status.Active > 0 {
		slog.Info("waiting for active cleaning jobs", "active", status.Active)
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
