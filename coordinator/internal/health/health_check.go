package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger is a dependency whose reachability gates readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// WorkerCounter reports how many workers are currently live
type WorkerCounter interface {
	WorkerIDs() []string
}

// HealthChecker provides health check endpoints
type HealthChecker struct {
	catalog Pinger
	workers WorkerCounter
	timeout time.Duration
	logger  *zap.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   int64             `json:"timestamp"`
	LiveWorkers int               `json:"live_workers"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(catalog Pinger, workers WorkerCounter, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		catalog: catalog,
		workers: workers,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// LivenessHandler handles liveness probe requests
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().Unix(),
	})
}

// ReadinessHandler handles readiness probe requests. The coordinator is
// ready once its key catalog answers; the live worker count is reported
// but does not gate readiness since workers join after startup.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.catalog.Ping(ctx); err != nil {
		h.logger.Error("Key catalog health check failed", zap.Error(err))
		checks["catalog"] = "unhealthy: " + err.Error()
		ready = false
	} else {
		checks["catalog"] = "healthy"
	}

	live := len(h.workers.WorkerIDs())
	checks["workers"] = fmt.Sprintf("%d live", live)

	status := HealthStatus{
		Status:      "ready",
		Timestamp:   time.Now().Unix(),
		LiveWorkers: live,
		Checks:      checks,
	}

	code := http.StatusOK
	if !ready {
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeStatus(w, code, status)
}

func writeStatus(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
