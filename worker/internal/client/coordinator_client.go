package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/distkv/distkv/worker/internal/metrics"
	"github.com/distkv/distkv/worker/internal/model"
	"github.com/distkv/distkv/worker/internal/storage"
	pb "github.com/distkv/distkv/pkg/proto"
)

const (
	DefaultHeartbeatInterval = 2 * time.Second
	DefaultReconnectBackoff  = 5 * time.Second
	DefaultSyncTimeout       = 10 * time.Second
)

// Identity is what the worker announces on every heartbeat
type Identity struct {
	WorkerID string
	Address  string
	Port     int
}

// CoordinatorClient keeps a heartbeat stream open to the coordinator and
// pulls a peer's store when the coordinator answers with a sync hint
type CoordinatorClient struct {
	identity          Identity
	target            string
	conn              *grpc.ClientConn
	health            pb.HealthServiceClient
	store             storage.Store
	heartbeatInterval time.Duration
	reconnectBackoff  time.Duration
	syncTimeout       time.Duration
	dialOptions       []grpc.DialOption
	metrics           *metrics.Metrics
	logger            *zap.Logger

	syncs sync.WaitGroup
}

// Option configures a CoordinatorClient
type Option func(*CoordinatorClient)

// WithIntervals overrides the heartbeat period, reconnect back-off and sync deadline
func WithIntervals(heartbeat, backoff, syncTimeout time.Duration) Option {
	return func(c *CoordinatorClient) {
		if heartbeat > 0 {
			c.heartbeatInterval = heartbeat
		}
		if backoff > 0 {
			c.reconnectBackoff = backoff
		}
		if syncTimeout > 0 {
			c.syncTimeout = syncTimeout
		}
	}
}

// WithDialOptions appends dial options to the coordinator and peer connections
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *CoordinatorClient) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// NewCoordinatorClient creates a heartbeat client for the coordinator at
// controllerAddr. No connection is made until Run.
func NewCoordinatorClient(
	controllerAddr string,
	identity Identity,
	store storage.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) (*CoordinatorClient, error) {
	c := &CoordinatorClient{
		identity:          identity,
		target:            controllerAddr,
		store:             store,
		heartbeatInterval: DefaultHeartbeatInterval,
		reconnectBackoff:  DefaultReconnectBackoff,
		syncTimeout:       DefaultSyncTimeout,
		dialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		metrics: m,
		logger:  logger.With(zap.String("worker_id", identity.WorkerID)),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := grpc.NewClient("passthrough:///"+controllerAddr, c.dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator connection to %s: %w", controllerAddr, err)
	}
	c.conn = conn
	c.health = pb.NewHealthServiceClient(conn)

	return c, nil
}

// Run heartbeats until ctx is cancelled, reconnecting after the back-off
// whenever the stream fails. In-flight syncs are joined before it returns.
func (c *CoordinatorClient) Run(ctx context.Context) {
	defer c.syncs.Wait()

	c.logger.Info("Starting heartbeat client",
		zap.String("coordinator", c.target),
		zap.Duration("interval", c.heartbeatInterval))

	for {
		err := c.runStream(ctx)
		if ctx.Err() != nil {
			c.logger.Info("Heartbeat client stopped")
			return
		}

		c.logger.Warn("Heartbeat stream failed, reconnecting",
			zap.Duration("backoff", c.reconnectBackoff),
			zap.Error(err))
		c.metrics.RecordReconnect()

		select {
		case <-ctx.Done():
			c.logger.Info("Heartbeat client stopped")
			return
		case <-time.After(c.reconnectBackoff):
		}
	}
}

// runStream holds one heartbeat stream open until it fails or ctx ends
func (c *CoordinatorClient) runStream(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := c.health.Heartbeat(streamCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open heartbeat stream: %w", err)
	}

	// the receiver must exit before Run can join syncs it started
	recvErr := make(chan error, 1)
	received := false
	go func() {
		recvErr <- c.receive(ctx, stream)
	}()
	defer func() {
		cancel()
		if !received {
			<-recvErr
		}
	}()

	req := &pb.HeartbeatRequest{
		WorkerId: c.identity.WorkerID,
		Address:  c.identity.Address,
		Port:     int32(c.identity.Port),
	}

	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	for {
		if err := stream.Send(req); err != nil {
			c.metrics.RecordHeartbeat("error")
			return fmt.Errorf("failed to send heartbeat: %w", err)
		}
		c.metrics.RecordHeartbeat("success")

		select {
		case <-ctx.Done():
			_ = stream.CloseSend()
			return ctx.Err()
		case err := <-recvErr:
			received = true
			return err
		case <-ticker.C:
		}
	}
}

// receive drains heartbeat responses and starts a sync for every hint
func (c *CoordinatorClient) receive(ctx context.Context, stream pb.HealthService_HeartbeatClient) error {
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return errors.New("coordinator closed the heartbeat stream")
		}
		if err != nil {
			return err
		}

		if resp.GetSyncFromAddress() == "" {
			continue
		}

		address, port := resp.GetSyncFromAddress(), int(resp.GetSyncFromPort())
		c.syncs.Add(1)
		go func() {
			defer c.syncs.Done()
			if _, err := c.SyncFrom(ctx, address, port); err != nil {
				c.logger.Error("Bootstrap sync failed",
					zap.String("address", net.JoinHostPort(address, strconv.Itoa(port))),
					zap.Error(err))
			}
		}()
	}
}

// SyncFrom pulls every entry from the peer at address:port into the local
// store and returns how many entries were persisted
func (c *CoordinatorClient) SyncFrom(ctx context.Context, address string, port int) (int, error) {
	peer := net.JoinHostPort(address, strconv.Itoa(port))
	c.logger.Info("Starting bootstrap sync", zap.String("address", peer))

	n, err := c.pull(ctx, peer)
	if err != nil {
		c.metrics.RecordSyncPull("error", n)
		return n, err
	}

	c.metrics.RecordSyncPull("success", n)
	c.logger.Info("Bootstrap sync complete",
		zap.String("address", peer),
		zap.Int("entries", n))
	return n, nil
}

func (c *CoordinatorClient) pull(ctx context.Context, peer string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	conn, err := grpc.NewClient("passthrough:///"+peer, c.dialOptions...)
	if err != nil {
		return 0, fmt.Errorf("failed to create connection to %s: %w", peer, err)
	}
	defer conn.Close()

	stream, err := pb.NewKVServiceClient(conn).Sync(ctx, &pb.SyncRequest{WorkerId: c.identity.WorkerID})
	if err != nil {
		return 0, fmt.Errorf("failed to open sync stream: %w", err)
	}

	n := 0
	for {
		e, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("sync stream failed after %d entries: %w", n, err)
		}

		if err := c.store.Put(ctx, model.Entry{
			Key:         e.GetKey(),
			Value:       e.GetValue(),
			VectorClock: e.GetVectorClock(),
		}); err != nil {
			return n, fmt.Errorf("failed to persist %q: %w", e.GetKey(), err)
		}
		n++
	}
}

// Close closes the coordinator connection
func (c *CoordinatorClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
