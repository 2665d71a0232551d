package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/metrics"
	"github.com/distkv/distkv/worker/internal/model"
	"github.com/distkv/distkv/worker/internal/storage"
	"github.com/distkv/distkv/worker/internal/validation"
	pb "github.com/distkv/distkv/pkg/proto"
)

// KVHandler implements the gRPC KV service on top of the local store
type KVHandler struct {
	store     storage.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	pb.UnimplementedKVServiceServer
}

// NewKVHandler creates a new KV handler
func NewKVHandler(store storage.Store, m *metrics.Metrics, logger *zap.Logger) *KVHandler {
	return &KVHandler{
		store:     store,
		validator: validation.NewValidator(),
		metrics:   m,
		logger:    logger,
	}
}

// Put stores the entry, replacing whatever the key held
func (h *KVHandler) Put(ctx context.Context, req *pb.PutRequest) (*pb.PutResponse, error) {
	start := time.Now()

	if err := h.write(ctx, req.GetKey(), req.GetValue(), req.GetVectorClock()); err != nil {
		h.logger.Error("Put failed", zap.String("key", req.GetKey()), zap.Error(err))
		h.metrics.RecordRequest("put", "error", time.Since(start).Seconds())
		return &pb.PutResponse{Success: false, Message: err.Error()}, nil
	}

	h.metrics.RecordRequest("put", "success", time.Since(start).Seconds())
	return &pb.PutResponse{Success: true}, nil
}

// Replicate is Put under another name; the coordinator uses it for the
// background third copy
func (h *KVHandler) Replicate(ctx context.Context, req *pb.ReplicateRequest) (*pb.ReplicateResponse, error) {
	start := time.Now()

	if err := h.write(ctx, req.GetKey(), req.GetValue(), req.GetVectorClock()); err != nil {
		h.logger.Error("Replicate failed", zap.String("key", req.GetKey()), zap.Error(err))
		h.metrics.RecordRequest("replicate", "error", time.Since(start).Seconds())
		return &pb.ReplicateResponse{Success: false}, nil
	}

	h.metrics.RecordRequest("replicate", "success", time.Since(start).Seconds())
	return &pb.ReplicateResponse{Success: true}, nil
}

// Get looks the key up; a missing key is found=false, not an error
func (h *KVHandler) Get(ctx context.Context, req *pb.GetRequest) (*pb.GetResponse, error) {
	start := time.Now()

	entry, found, err := h.store.Get(ctx, req.GetKey())
	if err != nil {
		h.logger.Error("Get failed", zap.String("key", req.GetKey()), zap.Error(err))
		h.metrics.RecordRequest("get", "error", time.Since(start).Seconds())
		return nil, errors.ToGRPCError(err)
	}

	if !found {
		h.metrics.RecordRequest("get", "not_found", time.Since(start).Seconds())
		return &pb.GetResponse{Found: false}, nil
	}

	h.metrics.RecordRequest("get", "success", time.Since(start).Seconds())
	return &pb.GetResponse{
		Found:       true,
		Value:       entry.Value,
		VectorClock: entry.VectorClock,
	}, nil
}

// Sync streams the whole local store to a bootstrapping peer
func (h *KVHandler) Sync(req *pb.SyncRequest, stream grpc.ServerStreamingServer[pb.SyncEntry]) error {
	start := time.Now()
	sent := 0

	h.logger.Info("Serving sync", zap.String("requester", req.GetWorkerId()))

	err := h.store.Scan(stream.Context(), func(e model.Entry) error {
		if err := stream.Send(&pb.SyncEntry{
			Key:         e.Key,
			Value:       e.Value,
			VectorClock: e.VectorClock,
		}); err != nil {
			return err
		}
		sent++
		return nil
	})
	h.metrics.RecordSyncServed(sent)

	if err != nil {
		h.logger.Error("Sync failed",
			zap.String("requester", req.GetWorkerId()),
			zap.Int("entries_sent", sent),
			zap.Error(err))
		h.metrics.RecordRequest("sync", "error", time.Since(start).Seconds())
		return errors.ToGRPCError(err)
	}

	h.logger.Info("Sync served",
		zap.String("requester", req.GetWorkerId()),
		zap.Int("entries_sent", sent))
	h.metrics.RecordRequest("sync", "success", time.Since(start).Seconds())
	return nil
}

func (h *KVHandler) write(ctx context.Context, key, value string, vc map[string]uint64) error {
	if err := h.validator.ValidateWrite(key, value, vc); err != nil {
		return err
	}

	h.metrics.RecordValueSize(len(value))
	return h.store.Put(ctx, model.Entry{Key: key, Value: value, VectorClock: vc})
}
