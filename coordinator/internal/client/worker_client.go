package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	pb "github.com/distkv/distkv/pkg/proto"
)

const (
	// DefaultUnaryTimeout bounds Put, Get and Replicate
	DefaultUnaryTimeout = 5 * time.Second
	// DefaultStreamTimeout bounds Sync
	DefaultStreamTimeout = 10 * time.Second
)

var (
	// ErrWorkerUnavailable is returned when the worker id is not live
	ErrWorkerUnavailable = errors.New("worker unavailable")
	// ErrWriteRejected is returned when a worker answers a write with success=false
	ErrWriteRejected = errors.New("write rejected by worker")
)

// WorkerResolver looks up a live worker's address
type WorkerResolver interface {
	Worker(workerID string) (model.WorkerInfo, bool)
}

// GetResult is a worker's answer to a Get
type GetResult struct {
	WorkerID    string
	Found       bool
	Value       string
	VectorClock model.VectorClock
}

// WorkerClient keeps one gRPC connection per worker id, opened on first
// use. A connection is replaced when the worker re-registers under a new
// address. The client never retries; callers decide what a failure means.
type WorkerClient struct {
	resolver      WorkerResolver
	connections   map[string]*workerConn // workerID -> connection
	mu            sync.RWMutex
	unaryTimeout  time.Duration
	streamTimeout time.Duration
	dialOptions   []grpc.DialOption
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

type workerConn struct {
	target string
	conn   *grpc.ClientConn
	kv     pb.KVServiceClient
}

// Option configures a WorkerClient
type Option func(*WorkerClient)

// WithTimeouts overrides the unary and streaming deadlines
func WithTimeouts(unary, stream time.Duration) Option {
	return func(c *WorkerClient) {
		if unary > 0 {
			c.unaryTimeout = unary
		}
		if stream > 0 {
			c.streamTimeout = stream
		}
	}
}

// WithDialOptions appends dial options to every connection
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *WorkerClient) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// NewWorkerClient creates a new worker client pool
func NewWorkerClient(resolver WorkerResolver, m *metrics.Metrics, logger *zap.Logger, opts ...Option) *WorkerClient {
	c := &WorkerClient{
		resolver:      resolver,
		connections:   make(map[string]*workerConn),
		unaryTimeout:  DefaultUnaryTimeout,
		streamTimeout: DefaultStreamTimeout,
		dialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		metrics: m,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores key on the worker
func (c *WorkerClient) Put(ctx context.Context, workerID, key, value string, vc model.VectorClock) error {
	kv, err := c.getClient(workerID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.unaryTimeout)
	defer cancel()

	resp, err := kv.Put(ctx, &pb.PutRequest{
		Key:         key,
		Value:       value,
		VectorClock: vc,
	})
	if err != nil {
		c.metrics.RecordReplicaCall("put", "error")
		return fmt.Errorf("put to %s: %w", workerID, err)
	}
	if !resp.GetSuccess() {
		c.metrics.RecordReplicaCall("put", "rejected")
		return fmt.Errorf("put to %s: %w: %s", workerID, ErrWriteRejected, resp.GetMessage())
	}

	c.metrics.RecordReplicaCall("put", "ok")
	return nil
}

// Replicate sends a best-effort copy of key to the worker
func (c *WorkerClient) Replicate(ctx context.Context, workerID, key, value string, vc model.VectorClock) error {
	kv, err := c.getClient(workerID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.unaryTimeout)
	defer cancel()

	resp, err := kv.Replicate(ctx, &pb.ReplicateRequest{
		Key:         key,
		Value:       value,
		VectorClock: vc,
	})
	if err != nil {
		c.metrics.RecordReplicaCall("replicate", "error")
		return fmt.Errorf("replicate to %s: %w", workerID, err)
	}
	if !resp.GetSuccess() {
		c.metrics.RecordReplicaCall("replicate", "rejected")
		return fmt.Errorf("replicate to %s: %w", workerID, ErrWriteRejected)
	}

	c.metrics.RecordReplicaCall("replicate", "ok")
	return nil
}

// Get reads key from the worker
func (c *WorkerClient) Get(ctx context.Context, workerID, key string) (*GetResult, error) {
	kv, err := c.getClient(workerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.unaryTimeout)
	defer cancel()

	resp, err := kv.Get(ctx, &pb.GetRequest{Key: key})
	if err != nil {
		c.metrics.RecordReplicaCall("get", "error")
		return nil, fmt.Errorf("get from %s: %w", workerID, err)
	}

	c.metrics.RecordReplicaCall("get", "ok")
	return &GetResult{
		WorkerID:    workerID,
		Found:       resp.GetFound(),
		Value:       resp.GetValue(),
		VectorClock: model.VectorClock(resp.GetVectorClock()),
	}, nil
}

// GetAll streams the worker's full store through Sync
func (c *WorkerClient) GetAll(ctx context.Context, workerID string) (map[string]string, error) {
	kv, err := c.getClient(workerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)
	defer cancel()

	stream, err := kv.Sync(ctx, &pb.SyncRequest{WorkerId: "coordinator"})
	if err != nil {
		c.metrics.RecordReplicaCall("sync", "error")
		return nil, fmt.Errorf("sync from %s: %w", workerID, err)
	}

	entries := make(map[string]string)
	for {
		entry, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.metrics.RecordReplicaCall("sync", "error")
			return nil, fmt.Errorf("sync from %s: %w", workerID, err)
		}
		entries[entry.GetKey()] = entry.GetValue()
	}

	c.metrics.RecordReplicaCall("sync", "ok")
	return entries, nil
}

// getClient returns or creates the stub for a worker
func (c *WorkerClient) getClient(workerID string) (pb.KVServiceClient, error) {
	info, ok := c.resolver.Worker(workerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkerUnavailable, workerID)
	}
	target := info.Target()

	c.mu.RLock()
	wc, exists := c.connections[workerID]
	c.mu.RUnlock()

	if exists && wc.target == target {
		return wc.kv, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check
	if wc, exists := c.connections[workerID]; exists {
		if wc.target == target {
			return wc.kv, nil
		}
		c.logger.Info("Worker address changed, reconnecting",
			zap.String("worker_id", workerID),
			zap.String("old_address", wc.target),
			zap.String("address", target))
		_ = wc.conn.Close()
		delete(c.connections, workerID)
	}

	// passthrough keeps the grpc.Dial resolution behaviour: the dialer
	// resolves the host itself.
	conn, err := grpc.NewClient("passthrough:///"+target, c.dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	wc = &workerConn{
		target: target,
		conn:   conn,
		kv:     pb.NewKVServiceClient(conn),
	}
	c.connections[workerID] = wc
	return wc.kv, nil
}

// Close closes all connections
func (c *WorkerClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, wc := range c.connections {
		wc.conn.Close()
	}
	c.connections = make(map[string]*workerConn)
}

// CloseConnection closes the connection to a specific worker
func (c *WorkerClient) CloseConnection(workerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wc, exists := c.connections[workerID]; exists {
		delete(c.connections, workerID)
		return wc.conn.Close()
	}

	return nil
}
