package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	"github.com/distkv/distkv/pkg/logging"
)

// ConflictService picks the winning version among replica responses and
// repairs replicas that fell behind
type ConflictService struct {
	replicator Replicator
	ordering   algorithm.Ordering
	vcOps      *algorithm.VectorClockOps
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewConflictService creates a new conflict service. A nil ordering
// selects ClockSumOrdering.
func NewConflictService(
	replicator Replicator,
	ordering algorithm.Ordering,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ConflictService {
	if ordering == nil {
		ordering = algorithm.ClockSumOrdering{}
	}
	return &ConflictService{
		replicator: replicator,
		ordering:   ordering,
		vcOps:      algorithm.NewVectorClockOps(),
		metrics:    m,
		logger:     logger,
	}
}

// Latest returns the newest found response, visiting replicas in order so
// the first one seen wins a tie. Returns nil when no replica has the key.
func (s *ConflictService) Latest(key string, replicas []string, responses map[string]*client.GetResult) *client.GetResult {
	var latest *client.GetResult

	for _, workerID := range replicas {
		resp := responses[workerID]
		if resp == nil || !resp.Found {
			continue
		}
		if latest == nil || s.ordering.Newer(resp.VectorClock, latest.VectorClock) {
			latest = resp
		}
	}

	if latest == nil {
		return nil
	}

	// The ordering always yields a winner; flag versions it had to break
	// a causal tie for
	for _, workerID := range replicas {
		resp := responses[workerID]
		if resp == nil || !resp.Found || resp == latest {
			continue
		}
		if s.vcOps.Compare(resp.VectorClock, latest.VectorClock) == model.Concurrent {
			s.metrics.RecordConflict()
			s.logger.Info("Concurrent versions detected",
				zap.String("key", key),
				zap.String("winner", latest.WorkerID),
				zap.String("replica", workerID),
				zap.String("ordering", s.ordering.Name()))
		}
	}

	return latest
}

// StaleReplicas lists replicas whose response is missing, not found, or
// strictly older than latest
func (s *ConflictService) StaleReplicas(replicas []string, responses map[string]*client.GetResult, latest *client.GetResult) []string {
	var stale []string
	for _, workerID := range replicas {
		resp := responses[workerID]
		if resp == nil || !resp.Found || s.ordering.Newer(latest.VectorClock, resp.VectorClock) {
			stale = append(stale, workerID)
		}
	}
	return stale
}

// Repair writes the winning version to each target. Failures are logged
// and left for the next read or recovery pass.
func (s *ConflictService) Repair(ctx context.Context, key string, latest *client.GetResult, targets []string) {
	logger := logging.FromContext(ctx, s.logger)
	repairedCount := 0

	for _, workerID := range targets {
		logger.Info("Read repair: updating stale replica",
			zap.String("key", key),
			zap.String("replica", workerID))

		if err := s.replicator.Put(ctx, workerID, key, latest.Value, latest.VectorClock); err != nil {
			s.metrics.RecordReadRepair("failed")
			logger.Warn("Read repair failed",
				zap.String("key", key),
				zap.String("replica", workerID),
				zap.Error(err))
			continue
		}
		s.metrics.RecordReadRepair("success")
		repairedCount++
	}

	logger.Debug("Read repair completed",
		zap.String("key", key),
		zap.Int("repaired_count", repairedCount),
		zap.Int("target_count", len(targets)))
}
