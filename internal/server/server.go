package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/ratelimit"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/storage"
)

// Server is the GameLens HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Limiter is optional; nil disables rate limiting.
type ServerConfig struct {
	DB      *storage.DB
	Logger  *slog.Logger
	Limiter ratelimit.Limiter

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Ingest endpoints are rate limited per client IP; the dashboard reads
	// are not — they are few and issued by the dashboard itself.
	ingestRL := ratelimit.Middleware(cfg.Limiter, "ingest", ratelimit.IPKeyFunc)

	mux := http.NewServeMux()

	// Run ingestion and overview.
	mux.Handle("POST /runs/insert", ingestRL(http.HandlerFunc(h.HandleInsertRun)))
	mux.Handle("POST /runs/overview/insert", ingestRL(http.HandlerFunc(h.HandleInsertRunSummary)))
	mux.HandleFunc("GET /runs/overview", h.HandleRunOverview)

	// Room visits and progression stats.
	mux.Handle("POST /rooms/insert", ingestRL(http.HandlerFunc(h.HandleInsertRoom)))
	mux.HandleFunc("GET /rooms/progression", h.HandleRoomProgression)

	// Stage catalog.
	mux.Handle("POST /stage/insert", ingestRL(http.HandlerFunc(h.HandleInsertStage)))

	// Generic events and the facts hanging off them.
	mux.Handle("POST /events/insert", ingestRL(http.HandlerFunc(h.HandleInsertEvent)))
	mux.Handle("POST /events/choices/insert", ingestRL(http.HandlerFunc(h.HandleInsertChoice)))
	mux.HandleFunc("GET /events/choices", h.HandleChoiceStats)
	mux.Handle("POST /events/boss/insert", ingestRL(http.HandlerFunc(h.HandleInsertBoss)))
	mux.Handle("POST /events/boss/summary/insert", ingestRL(http.HandlerFunc(h.HandleInsertBossSummary)))
	mux.HandleFunc("GET /events/boss", h.HandleBossEvents)
	mux.Handle("POST /events/death/insert", ingestRL(http.HandlerFunc(h.HandleInsertDeath)))
	mux.HandleFunc("GET /events/death", h.HandleDeathEvents)

	// Health (no rate limit).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
