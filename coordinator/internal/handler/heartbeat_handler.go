package handler

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/distkv/distkv/coordinator/internal/model"
	pb "github.com/distkv/distkv/pkg/proto"
)

// HeartbeatStatusOK is the status returned for every accepted heartbeat
const HeartbeatStatusOK = "OK"

// HeartbeatRegistry is the slice of the registry the heartbeat stream drives
type HeartbeatRegistry interface {
	RegisterHeartbeat(workerID, address string, port int) bool
	SyncSource(workerID string) (model.WorkerInfo, bool)
}

// HeartbeatHandler serves the worker liveness stream
type HeartbeatHandler struct {
	pb.UnimplementedHealthServiceServer
	registry HeartbeatRegistry
	logger   *zap.Logger
}

// NewHeartbeatHandler creates a new heartbeat handler
func NewHeartbeatHandler(registry HeartbeatRegistry, logger *zap.Logger) *HeartbeatHandler {
	return &HeartbeatHandler{
		registry: registry,
		logger:   logger,
	}
}

// Heartbeat answers every request on the stream until the worker closes it.
// A worker's first heartbeat is answered with a sync source when another
// worker is live.
func (h *HeartbeatHandler) Heartbeat(stream grpc.BidiStreamingServer[pb.HeartbeatRequest, pb.HeartbeatResponse]) error {
	var workerID string

	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			h.logger.Debug("Heartbeat stream closed by worker", zap.String("worker_id", workerID))
			return nil
		}
		if err != nil {
			if status.Code(err) == codes.Canceled {
				h.logger.Debug("Heartbeat stream canceled", zap.String("worker_id", workerID))
				return nil
			}
			h.logger.Warn("Heartbeat stream receive failed",
				zap.String("worker_id", workerID),
				zap.Error(err))
			return err
		}

		workerID = req.GetWorkerId()
		resp := h.handle(req)

		if err := stream.Send(resp); err != nil {
			h.logger.Warn("Failed to send heartbeat response",
				zap.String("worker_id", workerID),
				zap.Error(err))
			return err
		}
	}
}

func (h *HeartbeatHandler) handle(req *pb.HeartbeatRequest) *pb.HeartbeatResponse {
	resp := &pb.HeartbeatResponse{Status: HeartbeatStatusOK}

	if req.GetWorkerId() == "" {
		h.logger.Warn("Ignoring heartbeat without worker id",
			zap.String("address", req.GetAddress()))
		return resp
	}

	joined := h.registry.RegisterHeartbeat(req.GetWorkerId(), req.GetAddress(), int(req.GetPort()))
	if !joined {
		return resp
	}

	source, ok := h.registry.SyncSource(req.GetWorkerId())
	if !ok {
		return resp
	}

	resp.SyncFromAddress = source.Address
	resp.SyncFromPort = int32(source.Port)

	h.logger.Info("Directing new worker to bootstrap sync",
		zap.String("worker_id", req.GetWorkerId()),
		zap.String("sync_from", source.WorkerID),
		zap.String("sync_address", source.Target()))

	return resp
}
