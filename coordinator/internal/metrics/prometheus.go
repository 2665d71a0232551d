package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Consistency metrics
	QuorumFailures *prometheus.CounterVec
	FallbackWrites prometheus.Counter
	ConflictsTotal prometheus.Counter

	// Repair metrics
	ReadRepairsTotal *prometheus.CounterVec

	// Recovery metrics
	RecoveryPasses *prometheus.CounterVec
	RecoveryKeys   *prometheus.CounterVec

	// Worker metrics
	WorkersActive prometheus.Gauge
	WorkerEvents  *prometheus.CounterVec
	ReplicaCalls  *prometheus.CounterVec

	// Background metrics
	CatalogSize         prometheus.Gauge
	BackgroundQueueSize prometheus.Gauge
	BackgroundRejected  prometheus.Counter
}

// NewMetrics creates Prometheus metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_requests_total",
				Help: "Total number of client requests processed",
			},
			[]string{"operation", "outcome"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coordinator_request_duration_seconds",
				Help:    "Duration of client request processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		QuorumFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_quorum_failures_total",
				Help: "Total number of writes rejected for membership or quorum",
			},
			[]string{"reason"},
		),

		FallbackWrites: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coordinator_fallback_writes_total",
				Help: "Total number of writes that used the tertiary replica as fallback",
			},
		),

		ConflictsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coordinator_conflicts_total",
				Help: "Total number of concurrent versions observed on reads",
			},
		),

		ReadRepairsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_read_repairs_total",
				Help: "Total number of read repair puts",
			},
			[]string{"status"},
		),

		RecoveryPasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_recovery_passes_total",
				Help: "Total number of re-replication passes",
			},
			[]string{"status"},
		),

		RecoveryKeys: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_recovery_keys_total",
				Help: "Keys visited by re-replication, by result",
			},
			[]string{"result"},
		),

		WorkersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coordinator_workers_active",
				Help: "Number of live workers",
			},
		),

		WorkerEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_worker_events_total",
				Help: "Worker membership changes",
			},
			[]string{"event"},
		),

		ReplicaCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_replica_calls_total",
				Help: "Total number of RPCs to workers",
			},
			[]string{"method", "status"},
		),

		CatalogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coordinator_catalog_keys",
				Help: "Number of keys in the key catalog",
			},
		),

		BackgroundQueueSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coordinator_background_queue_size",
				Help: "Tasks waiting in the background pool",
			},
		),

		BackgroundRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coordinator_background_rejected_total",
				Help: "Background tasks dropped because the pool was full or stopped",
			},
		),
	}
}

// RecordRequest records a client request
func (m *Metrics) RecordRequest(operation, outcome string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordQuorumFailure records a rejected write
func (m *Metrics) RecordQuorumFailure(reason string) {
	m.QuorumFailures.WithLabelValues(reason).Inc()
}

// RecordFallbackWrite records use of the tertiary replica as fallback
func (m *Metrics) RecordFallbackWrite() {
	m.FallbackWrites.Inc()
}

// RecordConflict records a concurrent version seen on a read
func (m *Metrics) RecordConflict() {
	m.ConflictsTotal.Inc()
}

// RecordReadRepair records one repair put
func (m *Metrics) RecordReadRepair(status string) {
	m.ReadRepairsTotal.WithLabelValues(status).Inc()
}

// RecordRecoveryPass records a finished re-replication pass
func (m *Metrics) RecordRecoveryPass(status string) {
	m.RecoveryPasses.WithLabelValues(status).Inc()
}

// RecordRecoveryKey records the outcome for one key of a pass
func (m *Metrics) RecordRecoveryKey(result string) {
	m.RecoveryKeys.WithLabelValues(result).Inc()
}

// UpdateWorkersActive updates the live workers count
func (m *Metrics) UpdateWorkersActive(count int) {
	m.WorkersActive.Set(float64(count))
}

// RecordWorkerEvent records a join or eviction
func (m *Metrics) RecordWorkerEvent(event string) {
	m.WorkerEvents.WithLabelValues(event).Inc()
}

// RecordReplicaCall records an RPC to a worker
func (m *Metrics) RecordReplicaCall(method, status string) {
	m.ReplicaCalls.WithLabelValues(method, status).Inc()
}

// UpdateCatalogSize updates the key catalog size
func (m *Metrics) UpdateCatalogSize(size int64) {
	m.CatalogSize.Set(float64(size))
}

// UpdateBackgroundQueueSize updates the background queue depth
func (m *Metrics) UpdateBackgroundQueueSize(size int) {
	m.BackgroundQueueSize.Set(float64(size))
}

// RecordBackgroundRejected records a dropped background task
func (m *Metrics) RecordBackgroundRejected() {
	m.BackgroundRejected.Inc()
}
