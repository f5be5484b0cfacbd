package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"gobanner/adapters/excel"
	"gobanner/app"
	"gobanner/internal"
)

// Config holds HTTP server configuration
type Config struct {
	Port string
	// MaxUploadBytes caps the size of an uploaded survey file
	MaxUploadBytes int64
	// MaxConcurrentRuns bounds uploads being read and tabulated at once
	MaxConcurrentRuns int64
}

// DefaultConfig returns the standard server settings
func DefaultConfig() Config {
	return Config{
		Port:              "8080",
		MaxUploadBytes:    64 << 20,
		MaxConcurrentRuns: 4,
	}
}

// Server exposes the run service over a JSON API
type Server struct {
	config   Config
	router   *chi.Mux
	runs     *app.RunService
	exporter *excel.WorkbookWriter
	runSem   *semaphore.Weighted
	logger   *internal.Logger
}

// NewServer creates the HTTP server
func NewServer(config Config, runs *app.RunService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.MaxConcurrentRuns <= 0 {
		config.MaxConcurrentRuns = 1
	}
	s := &Server{
		config:   config,
		router:   chi.NewRouter(),
		runs:     runs,
		exporter: excel.NewWorkbookWriter(logger),
		runSem:   semaphore.NewWeighted(config.MaxConcurrentRuns),
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Post("/", s.handleStartRun)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Post("/decisions", s.handleDecision)
			r.Get("/table.xlsx", s.handleWorkbook)
			r.Get("/audit", s.handleAudit)
			r.Get("/verification", s.handleVerification)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[Server] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
