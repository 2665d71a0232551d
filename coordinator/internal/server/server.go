// Package server provides the coordinator's HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/distkv/distkv/coordinator/internal/config"
	"github.com/distkv/distkv/coordinator/internal/handler"
	"github.com/distkv/distkv/coordinator/internal/health"
	"github.com/distkv/distkv/coordinator/internal/middleware"
)

// Server represents the HTTP server.
type Server struct {
	router      *mux.Router
	handler     http.Handler
	httpServer  *http.Server
	kvHandler   *handler.KVHTTPHandler
	healthCheck *health.HealthChecker
	logger      *zap.Logger
	cfg         *config.Config
}

// NewServer creates a new HTTP server and mounts its routes.
func NewServer(
	cfg *config.Config,
	kvHandler *handler.KVHTTPHandler,
	healthCheck *health.HealthChecker,
	logger *zap.Logger,
) *Server {
	router := mux.NewRouter()

	s := &Server{
		router:      router,
		kvHandler:   kvHandler,
		healthCheck: healthCheck,
		logger:      logger,
		cfg:         cfg,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.HTTPPort)),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.RequestContext(s.logger),
		middleware.Recovery(s.logger),
		middleware.Logging(s.logger),
	}

	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.logger,
		)
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	// Wrapped outside the router so unmatched routes are logged too
	s.handler = middleware.Chain(middlewareChain...)(s.router)

	s.router.HandleFunc("/health/live", s.healthCheck.LivenessHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/health/ready", s.healthCheck.ReadinessHandler).Methods(http.MethodGet)

	s.kvHandler.Register(s.router)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "endpoint not found", http.StatusNotFound)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}
