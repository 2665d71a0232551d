package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a worker
type Metrics struct {
	// RPC metrics
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	ValueBytes       prometheus.Histogram

	// Sync metrics
	SyncEntriesServed prometheus.Counter
	SyncEntriesPulled prometheus.Counter
	SyncPullsTotal    *prometheus.CounterVec

	// Heartbeat metrics
	HeartbeatsTotal     *prometheus.CounterVec
	HeartbeatReconnects prometheus.Counter

	// Storage metrics
	StoredKeys prometheus.Gauge

	// System metrics
	MemoryUsageBytes prometheus.Gauge
	GoroutinesTotal  prometheus.Gauge
}

// NewMetrics creates worker metrics labelled with workerID and registers them with reg
func NewMetrics(reg prometheus.Registerer, workerID string) *Metrics {
	labels := prometheus.Labels{"worker_id": workerID}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "requests_total",
			Help:        "Total number of KV RPCs by method and status",
			ConstLabels: labels,
		}, []string{"method", "status"}),
		RequestsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "request_duration_seconds",
			Help:        "Histogram of KV RPC durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method"}),
		ValueBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "value_bytes",
			Help:        "Histogram of written value sizes in bytes",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(256, 2, 10), // 256B to 128KB
		}),

		SyncEntriesServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "sync_entries_served_total",
			Help:        "Entries streamed to bootstrapping peers",
			ConstLabels: labels,
		}),
		SyncEntriesPulled: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "sync_entries_pulled_total",
			Help:        "Entries persisted from a bootstrap sync",
			ConstLabels: labels,
		}),
		SyncPullsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "sync_pulls_total",
			Help:        "Bootstrap sync pulls by outcome",
			ConstLabels: labels,
		}, []string{"status"}),

		HeartbeatsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "heartbeats_total",
			Help:        "Heartbeats sent to the coordinator by outcome",
			ConstLabels: labels,
		}, []string{"status"}),
		HeartbeatReconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "heartbeat_reconnects_total",
			Help:        "Heartbeat stream reconnect attempts",
			ConstLabels: labels,
		}),

		StoredKeys: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "distkv",
			Subsystem:   "worker",
			Name:        "stored_keys",
			Help:        "Keys held in the local store",
			ConstLabels: labels,
		}),

		MemoryUsageBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "distkv",
			Subsystem:   "system",
			Name:        "memory_usage_bytes",
			Help:        "Heap bytes allocated",
			ConstLabels: labels,
		}),
		GoroutinesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "distkv",
			Subsystem:   "system",
			Name:        "goroutines_total",
			Help:        "Number of goroutines",
			ConstLabels: labels,
		}),
	}
}

// RecordRequest records one KV RPC
func (m *Metrics) RecordRequest(method, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestsDuration.WithLabelValues(method).Observe(duration)
}

// RecordValueSize records the size of a written value
func (m *Metrics) RecordValueSize(bytes int) {
	m.ValueBytes.Observe(float64(bytes))
}

// RecordSyncServed records entries streamed to a peer
func (m *Metrics) RecordSyncServed(entries int) {
	m.SyncEntriesServed.Add(float64(entries))
}

// RecordSyncPull records the outcome of a bootstrap pull
func (m *Metrics) RecordSyncPull(status string, entries int) {
	m.SyncPullsTotal.WithLabelValues(status).Inc()
	m.SyncEntriesPulled.Add(float64(entries))
}

// RecordHeartbeat records a heartbeat send
func (m *Metrics) RecordHeartbeat(status string) {
	m.HeartbeatsTotal.WithLabelValues(status).Inc()
}

// RecordReconnect records a heartbeat stream reconnect
func (m *Metrics) RecordReconnect() {
	m.HeartbeatReconnects.Inc()
}

// UpdateStoredKeys updates the stored keys gauge
func (m *Metrics) UpdateStoredKeys(n int64) {
	m.StoredKeys.Set(float64(n))
}

// UpdateSystemStats updates system-level statistics
func (m *Metrics) UpdateSystemStats(memoryUsage int64, goroutines int) {
	m.MemoryUsageBytes.Set(float64(memoryUsage))
	m.GoroutinesTotal.Set(float64(goroutines))
}
