package http

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

	"github.com/custodia-labs/sercha-directory/internal/core/domain"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	// Services
	authService      driving.AuthService
	directoryService driving.DirectoryService
	contentEvents    driving.ContentEvents
	cacheAdmin       driving.CacheAdminService

	// Infrastructure checked by /ready, keyed by component name
	dependencies map[string]Pinger

	limiter *RateLimitMiddleware
	cors    *CORSMiddleware
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// RateLimit is the per-client request rate on public directory routes;
	// zero disables limiting
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		RateLimit:      50,
		RateBurst:      100,
		AllowedOrigins: []string{"*"},
	}
}

// Services bundles the driving ports the API exposes
type Services struct {
	Auth       driving.AuthService
	Directory  driving.DirectoryService
	Events     driving.ContentEvents
	CacheAdmin driving.CacheAdminService
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services, dependencies map[string]Pinger) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		logger:           logger,
		authService:      svc.Auth,
		directoryService: svc.Directory,
		contentEvents:    svc.Events,
		cacheAdmin:       svc.CacheAdmin,
		dependencies:     dependencies,
		limiter:          NewRateLimitMiddleware(cfg.RateLimit, cfg.RateBurst),
		cors:             NewCORSMiddleware(cfg.AllowedOrigins),
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	handler = s.cors.Handler(handler)
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Public directory listings (rate limited)
	s.router.Handle("GET /directory/{type}",
		s.limiter.Handler(http.HandlerFunc(s.handleDirectory)))
	s.router.Handle("GET /directory/{type}/letter/{letter}",
		s.limiter.Handler(http.HandlerFunc(s.handleDirectory)))
	s.router.Handle("GET /directory/{type}/page/{paged}",
		s.limiter.Handler(http.HandlerFunc(s.handleDirectory)))
	s.router.Handle("GET /api/v1/directories",
		s.limiter.Handler(http.HandlerFunc(s.handleListDirectories)))
	s.router.Handle("GET /api/v1/directories/{type}",
		s.limiter.Handler(http.HandlerFunc(s.handleDirectoryJSON)))

	// Content mutation notifications (publisher or admin)
	s.router.Handle("POST /api/v1/events",
		authMiddleware.Authenticate(
			authMiddleware.RequireRole(domain.RolePublisher, domain.RoleAdmin)(http.HandlerFunc(s.handleContentEvent))))

	// Cache administration (admin-only)
	s.router.Handle("GET /api/v1/admin/cache/versions",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCacheVersions))))
	s.router.Handle("POST /api/v1/admin/cache/{type}/bump",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCacheBump))))
	s.router.Handle("DELETE /api/v1/admin/cache",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCacheFlush))))
	s.router.Handle("DELETE /api/v1/admin/cache/{type}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCacheFlush))))
	s.router.Handle("POST /api/v1/admin/cache/sweep",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCacheSweep))))
}

// Start starts the HTTP server and blocks until ctx is cancelled or an
// interrupt arrives, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
