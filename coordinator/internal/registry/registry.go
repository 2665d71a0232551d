// Package registry tracks live workers and the key catalog. Liveness is
// driven by heartbeats; a worker that stays silent longer than the
// heartbeat timeout is evicted by the reaper and the eviction handlers run.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	"github.com/distkv/distkv/coordinator/internal/store"
)

const (
	// DefaultHeartbeatTimeout is how long a worker may stay silent before eviction
	DefaultHeartbeatTimeout = 6 * time.Second
	// DefaultReapInterval is the reaper cadence
	DefaultReapInterval = 2 * time.Second
)

// EvictionHandler is invoked once per evicted worker, outside the registry lock
type EvictionHandler func(workerID string)

// Registry owns the live worker map and keeps the ring in step with it.
// A worker is on the ring iff it is in the live map; both are mutated
// under the same lock.
type Registry struct {
	workers  map[string]*model.WorkerInfo
	ring     *algorithm.ConsistentHasher
	catalog  store.KeyCatalog
	timeout  time.Duration
	now      func() time.Time
	handlers []EvictionHandler
	mu       sync.RWMutex
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithHeartbeatTimeout overrides DefaultHeartbeatTimeout
func WithHeartbeatTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewRegistry creates a registry over the given ring and catalog
func NewRegistry(
	ring *algorithm.ConsistentHasher,
	catalog store.KeyCatalog,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *Registry {
	r := &Registry{
		workers: make(map[string]*model.WorkerInfo),
		ring:    ring,
		catalog: catalog,
		timeout: DefaultHeartbeatTimeout,
		now:     time.Now,
		metrics: m,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnEviction registers a handler called after a worker is evicted
func (r *Registry) OnEviction(h EvictionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// RegisterHeartbeat records a heartbeat and reports whether the worker
// just joined. The stored heartbeat time never moves backwards.
func (r *Registry) RegisterHeartbeat(workerID, address string, port int) bool {
	now := r.now()

	r.mu.Lock()
	existing, exists := r.workers[workerID]
	if exists && existing.LastHeartbeat.After(now) {
		now = existing.LastHeartbeat
	}
	r.workers[workerID] = &model.WorkerInfo{
		WorkerID:      workerID,
		Address:       address,
		Port:          port,
		LastHeartbeat: now,
	}
	if !exists {
		r.ring.AddWorker(workerID)
	}
	count := len(r.workers)
	r.mu.Unlock()

	if !exists {
		r.logger.Info("Worker joined",
			zap.String("worker_id", workerID),
			zap.String("address", address),
			zap.Int("port", port))
		r.metrics.RecordWorkerEvent("join")
		r.metrics.UpdateWorkersActive(count)
	}

	return !exists
}

// SyncSource picks a live worker other than workerID to serve a bootstrap
// sync. The lowest worker id wins so the choice is deterministic.
func (r *Registry) SyncSource(workerID string) (model.WorkerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  *model.WorkerInfo
		found bool
	)
	for id, info := range r.workers {
		if id == workerID {
			continue
		}
		if !found || id < best.WorkerID {
			best = info
			found = true
		}
	}
	if !found {
		return model.WorkerInfo{}, false
	}
	return *best, true
}

// RegisterKey adds key to the catalog
func (r *Registry) RegisterKey(ctx context.Context, key string) error {
	return r.catalog.Add(ctx, key)
}

// Catalog returns the key catalog
func (r *Registry) Catalog() store.KeyCatalog {
	return r.catalog
}

// ActiveWorkers returns a snapshot of the live map
func (r *Registry) ActiveWorkers() map[string]model.WorkerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]model.WorkerInfo, len(r.workers))
	for id, info := range r.workers {
		out[id] = *info
	}
	return out
}

// WorkerIDs returns the live worker ids in ascending order
func (r *Registry) WorkerIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Worker returns the live worker with the given id
func (r *Registry) Worker(workerID string) (model.WorkerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.workers[workerID]
	if !ok {
		return model.WorkerInfo{}, false
	}
	return *info, true
}

// IsLive reports whether the worker is in the live map
func (r *Registry) IsLive(workerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.workers[workerID]
	return ok
}

// Replicas returns the replica set for key on the current ring
func (r *Registry) Replicas(key string, n int) []string {
	return r.ring.Replicas(key, n)
}

// Primary returns the primary replica for key
func (r *Registry) Primary(key string) (string, bool) {
	return r.ring.Primary(key)
}

// ReapExpired evicts every worker whose last heartbeat is older than the
// timeout and runs the eviction handlers for each. It returns the evicted ids.
func (r *Registry) ReapExpired() []string {
	now := r.now()

	r.mu.Lock()
	var evicted []string
	for id, info := range r.workers {
		if now.Sub(info.LastHeartbeat) > r.timeout {
			delete(r.workers, id)
			r.ring.RemoveWorker(id)
			evicted = append(evicted, id)
		}
	}
	count := len(r.workers)
	handlers := make([]EvictionHandler, len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.Unlock()

	sort.Strings(evicted)
	for _, id := range evicted {
		r.logger.Warn("Worker timed out, evicting",
			zap.String("worker_id", id),
			zap.Duration("timeout", r.timeout))
		r.metrics.RecordWorkerEvent("evict")
		for _, h := range handlers {
			h(id)
		}
	}
	if len(evicted) > 0 {
		r.metrics.UpdateWorkersActive(count)
	}

	return evicted
}

// Run drives the reaper until ctx is cancelled
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("Reaper started",
		zap.Duration("interval", interval),
		zap.Duration("timeout", r.timeout))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reaper stopped")
			return
		case <-ticker.C:
			r.ReapExpired()
			r.updateCatalogSize(ctx)
		}
	}
}

func (r *Registry) updateCatalogSize(ctx context.Context) {
	n, err := r.catalog.Len(ctx)
	if err != nil {
		r.logger.Debug("Failed to read catalog size", zap.Error(err))
		return
	}
	r.metrics.UpdateCatalogSize(n)
}
