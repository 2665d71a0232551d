package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/store"
)

// ErrRecoveryStopped is reported for evictions that arrive after Stop.
var ErrRecoveryStopped = errors.New("recovery service stopped")

// RecoveryService restores replica counts after a worker is evicted. Each
// eviction gets its own pass over the key catalog on a dedicated goroutine;
// keys and their replicas are handled one at a time within a pass.
type RecoveryService struct {
	membership Membership
	replicator Replicator
	catalog    store.KeyCatalog
	quorum     *algorithm.QuorumCalculator
	metrics    *metrics.Metrics
	logger     *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	stopped  bool
	passes   sync.WaitGroup
	stopOnce sync.Once
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(
	membership Membership,
	replicator Replicator,
	catalog store.KeyCatalog,
	m *metrics.Metrics,
	logger *zap.Logger,
) *RecoveryService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RecoveryService{
		membership: membership,
		replicator: replicator,
		catalog:    catalog,
		quorum:     algorithm.NewQuorumCalculator(),
		metrics:    m,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// HandleEviction starts a recovery pass for the evicted worker. It is
// registered as the registry's eviction handler and never blocks the reaper.
// Passes are not queued behind other background work, so none is dropped.
func (s *RecoveryService) HandleEviction(workerID string) {
	if err := s.start(workerID); err != nil {
		s.metrics.RecordRecoveryPass("rejected")
		s.logger.Warn("Recovery pass not started",
			zap.String("worker_id", workerID),
			zap.Error(err))
	}
}

func (s *RecoveryService) start(workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrRecoveryStopped
	}

	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		defer func() {
			if r := recover(); r != nil {
				s.metrics.RecordRecoveryPass("aborted")
				s.logger.Error("Recovery pass panicked",
					zap.String("worker_id", workerID),
					zap.Any("panic", r))
			}
		}()
		_ = s.Recover(s.ctx, workerID)
	}()
	return nil
}

// Stop refuses new passes and waits up to timeout for running ones. On
// timeout the pass context is cancelled so running passes abort at the
// next key.
func (s *RecoveryService) Stop(timeout time.Duration) error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		done := make(chan struct{})
		go func() {
			s.passes.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			err = fmt.Errorf("recovery passes still running after %v", timeout)
			s.logger.Warn("Recovery stop timeout, aborting running passes")
		}
		s.cancel()
	})
	return err
}

// Recover re-replicates every catalogued key on the current ring, using a
// live replica other than the failed worker as the source
func (s *RecoveryService) Recover(ctx context.Context, failedWorkerID string) error {
	start := time.Now()
	s.logger.Info("Starting recovery pass", zap.String("worker_id", failedWorkerID))

	var visited, repaired, skipped int
	err := s.catalog.Range(ctx, func(key string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		visited++
		if s.recoverKey(ctx, key, failedWorkerID) {
			repaired++
		} else {
			skipped++
		}
		return nil
	})

	if err != nil {
		s.metrics.RecordRecoveryPass("aborted")
		s.logger.Warn("Recovery pass aborted",
			zap.String("worker_id", failedWorkerID),
			zap.Int("keys_visited", visited),
			zap.Error(err))
		return err
	}

	s.metrics.RecordRecoveryPass("completed")
	s.logger.Info("Recovery pass completed",
		zap.String("worker_id", failedWorkerID),
		zap.Int("keys_visited", visited),
		zap.Int("keys_replicated", repaired),
		zap.Int("keys_skipped", skipped),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// recoverKey copies key from the first usable replica to the rest of its
// replica set. It reports whether a source was found.
func (s *RecoveryService) recoverKey(ctx context.Context, key, failedWorkerID string) bool {
	replicas := s.membership.Replicas(key, s.quorum.ReplicationFactor())

	source := s.findSource(ctx, key, replicas, failedWorkerID)
	if source == nil {
		s.metrics.RecordRecoveryKey("no_source")
		s.logger.Debug("No live source for key, skipping",
			zap.String("key", key))
		return false
	}

	for _, target := range replicas {
		if target == source.WorkerID {
			continue
		}
		if err := s.replicator.Put(ctx, target, key, source.Value, source.VectorClock); err != nil {
			s.logger.Warn("Re-replication failed",
				zap.String("key", key),
				zap.String("replica", target),
				zap.Error(err))
			continue
		}
	}

	s.metrics.RecordRecoveryKey("replicated")
	return true
}

func (s *RecoveryService) findSource(ctx context.Context, key string, replicas []string, failedWorkerID string) *client.GetResult {
	for _, workerID := range replicas {
		if workerID == failedWorkerID || !s.membership.IsLive(workerID) {
			continue
		}
		resp, err := s.replicator.Get(ctx, workerID, key)
		if err != nil {
			s.logger.Warn("Recovery read failed",
				zap.String("key", key),
				zap.String("replica", workerID),
				zap.Error(err))
			continue
		}
		if resp.Found {
			return resp
		}
	}
	return nil
}
