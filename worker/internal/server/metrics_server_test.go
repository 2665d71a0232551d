package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/metrics"
	"github.com/distkv/distkv/worker/internal/model"
	"github.com/distkv/distkv/worker/internal/storage"
)

func newTestServer(t *testing.T, store storage.Store) (*MetricsServer, *metrics.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, "w1")
	ms := NewMetricsServer(&MetricsServerConfig{Port: 9091, WorkerID: "w1", Gatherer: reg}, store, m, zap.NewNop())
	return ms, m
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	ms, _ := newTestServer(t, storage.NewMemoryStore(zap.NewNop()))

	rec := get(t, ms.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "w1", body["worker_id"])
}

func TestReady(t *testing.T) {
	store := storage.NewMemoryStore(zap.NewNop())
	require.NoError(t, store.Put(context.Background(), model.Entry{Key: "k", Value: "v"}))
	ms, _ := newTestServer(t, store)

	rec := get(t, ms.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, float64(1), body["stored_keys"])

	require.NoError(t, store.Close())
	rec = get(t, ms.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	store := storage.NewMemoryStore(zap.NewNop())
	ms, m := newTestServer(t, store)

	require.NoError(t, store.Put(context.Background(), model.Entry{Key: "a", Value: "1"}))
	require.NoError(t, store.Put(context.Background(), model.Entry{Key: "b", Value: "2"}))
	ms.updateMetrics()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.StoredKeys))

	rec := get(t, ms.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "distkv_worker_stored_keys"))
}
