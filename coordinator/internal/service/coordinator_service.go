package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	"github.com/distkv/distkv/pkg/logging"
)

// CoordinatorService implements the client-facing write and read paths.
// Writes need two acknowledgements among the first two replicas, falling
// back to the tertiary when one of them fails; otherwise the tertiary gets
// an async copy. Reads pick the newest version under the configured
// ordering and repair stale replicas in the background.
type CoordinatorService struct {
	membership      Membership
	replicator      Replicator
	conflictService *ConflictService
	background      Scheduler
	quorum          *algorithm.QuorumCalculator
	now             func() time.Time
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewCoordinatorService creates a new coordinator service
func NewCoordinatorService(
	membership Membership,
	replicator Replicator,
	conflictService *ConflictService,
	background Scheduler,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CoordinatorService {
	return &CoordinatorService{
		membership:      membership,
		replicator:      replicator,
		conflictService: conflictService,
		background:      background,
		quorum:          algorithm.NewQuorumCalculator(),
		now:             time.Now,
		metrics:         m,
		logger:          logger,
	}
}

// WriteKeyValue stores value under key with quorum semantics
func (s *CoordinatorService) WriteKeyValue(ctx context.Context, key, value string) (*WriteResult, error) {
	logger := logging.FromContext(ctx, s.logger)

	// Catalogued even if the write later fails
	if err := s.membership.RegisterKey(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to register key: %w", err)
	}

	replicas := s.membership.Replicas(key, s.quorum.ReplicationFactor())

	logger.Info("Writing to replicas",
		zap.String("key", key),
		zap.Strings("replicas", replicas))

	if !s.quorum.HasEnoughReplicas(len(replicas)) {
		s.metrics.RecordQuorumFailure("insufficient_replicas")
		return nil, fmt.Errorf("%w: %d live", ErrInsufficientReplicas, len(replicas))
	}

	vectorClock := model.VectorClock{
		model.WriteClockComponent: uint64(s.now().UnixMilli()),
	}

	acked := s.writeToPrimaries(ctx, replicas[:2], key, value, vectorClock)

	syncReplicas := make([]string, 0, len(replicas))
	for i, ok := range acked {
		if ok {
			syncReplicas = append(syncReplicas, replicas[i])
		}
	}

	result := &WriteResult{
		Key:         key,
		VectorClock: vectorClock,
	}

	if s.quorum.HasTertiary(len(replicas)) {
		tertiary := replicas[2]

		if !s.quorum.IsQuorumReached(len(syncReplicas)) {
			logger.Info("Primary/secondary missed quorum, falling back to tertiary",
				zap.String("key", key),
				zap.String("replica", tertiary))
			result.FallbackUsed = true
			s.metrics.RecordFallbackWrite()

			if err := s.replicator.Put(ctx, tertiary, key, value, vectorClock); err != nil {
				logger.Error("Tertiary fallback failed",
					zap.String("key", key),
					zap.String("replica", tertiary),
					zap.Error(err))
			} else {
				syncReplicas = append(syncReplicas, tertiary)
			}
		} else {
			result.AsyncReplica = tertiary
			s.replicateAsync(tertiary, key, value, vectorClock)
		}
	}

	if !s.quorum.IsQuorumReached(len(syncReplicas)) {
		s.metrics.RecordQuorumFailure("quorum_not_reached")
		logger.Warn("Write failed to reach quorum",
			zap.String("key", key),
			zap.Int("success_count", len(syncReplicas)))
		return nil, &QuorumError{Successes: len(syncReplicas)}
	}

	result.SyncReplicas = syncReplicas

	logger.Info("Write completed",
		zap.String("key", key),
		zap.Strings("sync_replicas", syncReplicas),
		zap.String("async_replica", result.AsyncReplica))

	return result, nil
}

// writeToPrimaries puts to both targets in parallel and reports which acknowledged
func (s *CoordinatorService) writeToPrimaries(
	ctx context.Context,
	targets []string,
	key, value string,
	vectorClock model.VectorClock,
) []bool {
	logger := logging.FromContext(ctx, s.logger)
	acked := make([]bool, len(targets))

	var g errgroup.Group
	for i, workerID := range targets {
		i, workerID := i, workerID // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			if err := s.replicator.Put(ctx, workerID, key, value, vectorClock); err != nil {
				logger.Warn("Write failed to replica",
					zap.String("key", key),
					zap.String("replica", workerID),
					zap.Error(err))
				return nil // Don't fail the group, quorum decides
			}
			acked[i] = true
			return nil
		})
	}
	_ = g.Wait()

	return acked
}

// replicateAsync sends the tertiary copy on the background pool
func (s *CoordinatorService) replicateAsync(workerID, key, value string, vectorClock model.VectorClock) {
	s.background.Go("async-replicate", func(ctx context.Context) error {
		if err := s.replicator.Replicate(ctx, workerID, key, value, vectorClock); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		return nil
	})
}

// ReadKeyValue returns the newest known version of key and schedules read
// repair for replicas that are missing it or hold an older version
func (s *CoordinatorService) ReadKeyValue(ctx context.Context, key string) (*ReadResult, error) {
	logger := logging.FromContext(ctx, s.logger)
	replicas := s.membership.Replicas(key, s.quorum.ReplicationFactor())

	responses := make(map[string]*client.GetResult, len(replicas))
	for _, workerID := range replicas {
		resp, err := s.replicator.Get(ctx, workerID, key)
		if err != nil {
			logger.Warn("Read failed from replica",
				zap.String("key", key),
				zap.String("replica", workerID),
				zap.Error(err))
			continue
		}
		responses[workerID] = resp
	}

	latest := s.conflictService.Latest(key, replicas, responses)
	if latest == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if stale := s.conflictService.StaleReplicas(replicas, responses, latest); len(stale) > 0 {
		s.background.Go("read-repair", func(ctx context.Context) error {
			s.conflictService.Repair(logging.WithLogger(ctx, logger), key, latest, stale)
			return nil
		})
	}

	logger.Info("Key retrieved",
		zap.String("key", key),
		zap.String("replica", latest.WorkerID))

	return &ReadResult{
		Key:         key,
		Value:       latest.Value,
		Source:      latest.WorkerID,
		VectorClock: latest.VectorClock,
	}, nil
}
