// Package workerpool runs fire-and-forget background work on a bounded set
// of goroutines so shutdown can join it.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrPoolStopped is returned when submitting to a stopped pool
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrQueueFull is returned when the task queue has no room
	ErrQueueFull = errors.New("worker pool queue full")
)

// Task represents a unit of background work. Fn receives the pool's
// context, which is cancelled when Stop gives up waiting.
type Task struct {
	Name string
	Fn   func(context.Context) error
}

// WorkerPool manages a bounded pool of goroutines for executing tasks
type WorkerPool struct {
	name       string
	maxWorkers int
	taskQueue  chan Task
	queueSize  int
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *zap.Logger
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopChan   chan struct{}
	submitMu   sync.RWMutex

	queueGauge prometheus.Gauge
	rejected   prometheus.Counter

	activeWorkers  int32
	totalTasks     uint64
	completedTasks uint64
	failedTasks    uint64
	rejectedTasks  uint64
}

// Config holds worker pool configuration
type Config struct {
	Name       string
	MaxWorkers int
	QueueSize  int
	Logger     *zap.Logger

	// Optional instrumentation
	QueueGauge prometheus.Gauge
	Rejected   prometheus.Counter
}

// NewWorkerPool creates and starts a worker pool
func NewWorkerPool(cfg Config) *WorkerPool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		name:       cfg.Name,
		maxWorkers: cfg.MaxWorkers,
		queueSize:  cfg.QueueSize,
		taskQueue:  make(chan Task, cfg.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
		logger:     cfg.Logger,
		stopChan:   make(chan struct{}),
		queueGauge: cfg.QueueGauge,
		rejected:   cfg.Rejected,
	}

	for i := 0; i < pool.maxWorkers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	pool.logger.Info("Worker pool started",
		zap.String("name", pool.name),
		zap.Int("max_workers", pool.maxWorkers),
		zap.Int("queue_size", pool.queueSize))

	return pool
}

// worker drains the queue until the pool stops. Tasks still queued at stop
// time are dropped.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case task := <-p.taskQueue:
			p.observeQueue()
			p.executeTask(id, task)
		}
	}
}

func (p *WorkerPool) executeTask(workerID int, task Task) {
	atomic.AddInt32(&p.activeWorkers, 1)
	defer atomic.AddInt32(&p.activeWorkers, -1)

	start := time.Now()
	err := p.safeExecute(task)
	duration := time.Since(start)

	if err != nil {
		atomic.AddUint64(&p.failedTasks, 1)
		p.logger.Warn("Background task failed",
			zap.String("pool", p.name),
			zap.Int("worker", workerID),
			zap.String("task", task.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}

	atomic.AddUint64(&p.completedTasks, 1)
	p.logger.Debug("Background task completed",
		zap.String("pool", p.name),
		zap.String("task", task.Name),
		zap.Duration("duration", duration))
}

// safeExecute executes a task with panic recovery
func (p *WorkerPool) safeExecute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
			p.logger.Error("Task panic recovered",
				zap.String("pool", p.name),
				zap.String("task", task.Name),
				zap.Any("panic", r))
		}
	}()

	return task.Fn(p.ctx)
}

// Submit queues a task without blocking
func (p *WorkerPool) Submit(task Task) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	select {
	case <-p.stopChan:
		p.reject()
		return fmt.Errorf("%w: %s", ErrPoolStopped, p.name)
	default:
	}

	select {
	case p.taskQueue <- task:
		atomic.AddUint64(&p.totalTasks, 1)
		p.observeQueue()
		return nil
	default:
		p.reject()
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

// Go is Submit for a bare function. Rejections are logged and the task is
// dropped; it reports whether the task was queued.
func (p *WorkerPool) Go(name string, fn func(context.Context) error) bool {
	if err := p.Submit(Task{Name: name, Fn: fn}); err != nil {
		p.logger.Warn("Background task dropped",
			zap.String("task", name),
			zap.Error(err))
		return false
	}
	return true
}

func (p *WorkerPool) reject() {
	atomic.AddUint64(&p.rejectedTasks, 1)
	if p.rejected != nil {
		p.rejected.Inc()
	}
}

func (p *WorkerPool) observeQueue() {
	if p.queueGauge != nil {
		p.queueGauge.Set(float64(len(p.taskQueue)))
	}
}

// Stop refuses new tasks and waits up to timeout for running tasks to
// finish. On timeout the task context is cancelled so running tasks abort.
func (p *WorkerPool) Stop(timeout time.Duration) error {
	var err error
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool", zap.String("name", p.name))

		p.submitMu.Lock()
		close(p.stopChan)
		p.submitMu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("Worker pool stopped gracefully", zap.String("name", p.name))
		case <-time.After(timeout):
			err = fmt.Errorf("worker pool '%s' stop timeout after %v", p.name, timeout)
			p.logger.Warn("Worker pool stop timeout, aborting running tasks", zap.String("name", p.name))
		}
		p.cancel()
	})
	return err
}

// Stats returns current worker pool statistics
func (p *WorkerPool) Stats() Stats {
	return Stats{
		Name:           p.name,
		MaxWorkers:     p.maxWorkers,
		ActiveWorkers:  int(atomic.LoadInt32(&p.activeWorkers)),
		QueueSize:      p.queueSize,
		QueuedTasks:    len(p.taskQueue),
		TotalTasks:     atomic.LoadUint64(&p.totalTasks),
		CompletedTasks: atomic.LoadUint64(&p.completedTasks),
		FailedTasks:    atomic.LoadUint64(&p.failedTasks),
		RejectedTasks:  atomic.LoadUint64(&p.rejectedTasks),
	}
}

// Stats represents worker pool statistics
type Stats struct {
	Name           string
	MaxWorkers     int
	ActiveWorkers  int
	QueueSize      int
	QueuedTasks    int
	TotalTasks     uint64
	CompletedTasks uint64
	FailedTasks    uint64
	RejectedTasks  uint64
}
