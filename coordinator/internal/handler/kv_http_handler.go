package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	"github.com/distkv/distkv/coordinator/internal/service"
	"github.com/distkv/distkv/pkg/logging"
)

// MaxValueBytes caps the size of a stored value
const MaxValueBytes = 4 << 20

const noAsyncReplica = "None (Quorum fallback used)"

// KVService is the coordinator's client-facing read and write paths
type KVService interface {
	WriteKeyValue(ctx context.Context, key, value string) (*service.WriteResult, error)
	ReadKeyValue(ctx context.Context, key string) (*service.ReadResult, error)
}

// WorkerDirectory exposes the live worker set
type WorkerDirectory interface {
	ActiveWorkers() map[string]model.WorkerInfo
	IsLive(workerID string) bool
}

// WorkerDumper fetches a worker's full store
type WorkerDumper interface {
	GetAll(ctx context.Context, workerID string) (map[string]string, error)
}

// KVHTTPHandler serves the /api/kv endpoints
type KVHTTPHandler struct {
	kv      KVService
	workers WorkerDirectory
	dumper  WorkerDumper
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// workerView is the JSON shape of one entry in the worker listing
type workerView struct {
	Address       string `json:"address"`
	Port          int    `json:"port"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
}

// NewKVHTTPHandler creates a new HTTP handler
func NewKVHTTPHandler(
	kv KVService,
	workers WorkerDirectory,
	dumper WorkerDumper,
	m *metrics.Metrics,
	logger *zap.Logger,
) *KVHTTPHandler {
	return &KVHTTPHandler{
		kv:      kv,
		workers: workers,
		dumper:  dumper,
		metrics: m,
		logger:  logger,
	}
}

// Register mounts the routes on r. The literal worker routes are added
// before the {key} routes so they take precedence.
func (h *KVHTTPHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/kv").Subrouter()
	api.HandleFunc("/workers", h.ListWorkers).Methods(http.MethodGet)
	api.HandleFunc("/worker/{id}", h.GetWorkerData).Methods(http.MethodGet)
	api.HandleFunc("/{key}", h.Put).Methods(http.MethodPost)
	api.HandleFunc("/{key}", h.Get).Methods(http.MethodGet)
}

// Put handles POST /api/kv/{key}; the raw body is the value. A missing or
// empty body is a 400 "Request body is required", so the empty string
// cannot be stored over HTTP even though workers accept it.
func (h *KVHTTPHandler) Put(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context(), h.logger)
	key := mux.Vars(r)["key"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxValueBytes))
	if err != nil {
		h.finish("put", "invalid", start)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Value too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		h.finish("put", "invalid", start)
		http.Error(w, "Request body is required", http.StatusBadRequest)
		return
	}

	logger.Info("Received PUT request", zap.String("key", key), zap.Int("value_size", len(body)))

	result, err := h.kv.WriteKeyValue(r.Context(), key, string(body))
	if err != nil {
		var quorumErr *service.QuorumError
		switch {
		case errors.Is(err, service.ErrInsufficientReplicas):
			h.finish("put", "insufficient_replicas", start)
			writeText(w, http.StatusServiceUnavailable, "Not enough workers for quorum")
		case errors.As(err, &quorumErr):
			h.finish("put", "quorum_not_reached", start)
			writeText(w, http.StatusInternalServerError, fmt.Sprintf("Failed to reach quorum. Successes: %d", quorumErr.Successes))
		default:
			h.finish("put", "error", start)
			logger.Error("Write failed", zap.String("key", key), zap.Error(err))
			writeText(w, http.StatusInternalServerError, "Write failed: "+err.Error())
		}
		return
	}

	h.finish("put", "success", start)
	writeText(w, http.StatusOK, writeSummary(result))
}

// Get handles GET /api/kv/{key}
func (h *KVHTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context(), h.logger)
	key := mux.Vars(r)["key"]

	logger.Info("Received GET request", zap.String("key", key))

	result, err := h.kv.ReadKeyValue(r.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			h.finish("get", "not_found", start)
			writeText(w, http.StatusNotFound, "Key not found: "+key)
			return
		}
		h.finish("get", "error", start)
		logger.Error("Read failed", zap.String("key", key), zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Read failed: "+err.Error())
		return
	}

	h.finish("get", "success", start)
	writeText(w, http.StatusOK, fmt.Sprintf("Value: %s (Source: %s)", result.Value, result.Source))
}

// GetWorkerData handles GET /api/kv/worker/{id}, dumping that worker's store
func (h *KVHTTPHandler) GetWorkerData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context(), h.logger)
	workerID := mux.Vars(r)["id"]

	logger.Info("Received request for all data from worker", zap.String("worker_id", workerID))

	if !h.workers.IsLive(workerID) {
		h.finish("worker_data", "not_found", start)
		writeText(w, http.StatusNotFound, "Worker not found or offline: "+workerID)
		return
	}

	data, err := h.dumper.GetAll(r.Context(), workerID)
	if err != nil {
		h.finish("worker_data", "error", start)
		logger.Error("Failed to retrieve data from worker",
			zap.String("worker_id", workerID),
			zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error retrieving data from worker: "+err.Error())
		return
	}

	h.finish("worker_data", "success", start)
	writeJSON(w, http.StatusOK, data)
}

// ListWorkers handles GET /api/kv/workers
func (h *KVHTTPHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	active := h.workers.ActiveWorkers()
	view := make(map[string]workerView, len(active))
	for id, info := range active {
		view[id] = workerView{
			Address:       info.Address,
			Port:          info.Port,
			LastHeartbeat: info.LastHeartbeat.UnixMilli(),
		}
	}

	h.finish("list_workers", "success", start)
	writeJSON(w, http.StatusOK, view)
}

func (h *KVHTTPHandler) finish(operation, outcome string, start time.Time) {
	h.metrics.RecordRequest(operation, outcome, time.Since(start).Seconds())
}

func writeSummary(result *service.WriteResult) string {
	async := result.AsyncReplica
	if async == "" {
		async = noAsyncReplica
	}
	return fmt.Sprintf("Stored successfully. {Synchronous Replicas: [%s]}, {Asynchronous Replica: %s}",
		strings.Join(result.SyncReplicas, ", "), async)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
