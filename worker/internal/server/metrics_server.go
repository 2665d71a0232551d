package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/metrics"
	"github.com/distkv/distkv/worker/internal/storage"
)

const collectInterval = 15 * time.Second

// MetricsServer serves Prometheus metrics and health probes via HTTP
type MetricsServer struct {
	httpServer *http.Server
	store      storage.Store
	metrics    *metrics.Metrics
	logger     *zap.Logger
	workerID   string
	stopChan   chan struct{}
}

// MetricsServerConfig holds configuration for the metrics server
type MetricsServerConfig struct {
	Port     int
	Path     string
	WorkerID string
	Gatherer prometheus.Gatherer
}

// NewMetricsServer creates a new metrics server
func NewMetricsServer(cfg *MetricsServerConfig, store storage.Store, m *metrics.Metrics, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()

	ms := &MetricsServer{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:    store,
		metrics:  m,
		logger:   logger,
		workerID: cfg.WorkerID,
		stopChan: make(chan struct{}),
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", ms.healthHandler)
	mux.HandleFunc("/ready", ms.readyHandler)

	return ms
}

// Handler returns the HTTP handler
func (s *MetricsServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the metrics server and the stats collector
func (s *MetricsServer) Start() error {
	s.logger.Info("Starting metrics server", zap.String("addr", s.httpServer.Addr))

	go s.collectSystemMetrics()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully stops the metrics server
func (s *MetricsServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping metrics server")

	close(s.stopChan)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}

	return nil
}

func (s *MetricsServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"worker_id": s.workerID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// readyHandler reports ready while the local store answers
func (s *MetricsServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Store not ready", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"reason": err.Error(),
		})
		return
	}

	keys, err := s.store.Len(ctx)
	if err != nil {
		s.logger.Warn("Failed to count stored keys", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"worker_id":   s.workerID,
		"stored_keys": keys,
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

func (s *MetricsServer) collectSystemMetrics() {
	ticker := time.NewTicker(collectInterval)
	defer ticker.Stop()

	s.updateMetrics()
	for {
		select {
		case <-ticker.C:
			s.updateMetrics()
		case <-s.stopChan:
			return
		}
	}
}

// updateMetrics refreshes the gauges that are sampled rather than counted
func (s *MetricsServer) updateMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	s.metrics.UpdateSystemStats(int64(memStats.Alloc), runtime.NumGoroutine())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	keys, err := s.store.Len(ctx)
	if err != nil {
		s.logger.Warn("Failed to count stored keys", zap.Error(err))
		return
	}
	s.metrics.UpdateStoredKeys(keys)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
