package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	pb "github.com/distkv/distkv/pkg/proto"
)

type fakeKVServer struct {
	pb.UnimplementedKVServiceServer
	mu      sync.Mutex
	data    map[string]*pb.PutRequest
	rejectN bool
	delay   time.Duration
}

func newFakeKVServer() *fakeKVServer {
	return &fakeKVServer{data: make(map[string]*pb.PutRequest)}
}

func (s *fakeKVServer) Put(ctx context.Context, req *pb.PutRequest) (*pb.PutResponse, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectN {
		return &pb.PutResponse{Success: false, Message: "disk full"}, nil
	}
	s.data[req.Key] = req
	return &pb.PutResponse{Success: true}, nil
}

func (s *fakeKVServer) Get(ctx context.Context, req *pb.GetRequest) (*pb.GetResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[req.Key]
	if !ok {
		return &pb.GetResponse{Found: false}, nil
	}
	return &pb.GetResponse{Found: true, Value: entry.Value, VectorClock: entry.VectorClock}, nil
}

func (s *fakeKVServer) Replicate(ctx context.Context, req *pb.ReplicateRequest) (*pb.ReplicateResponse, error) {
	resp, err := s.Put(ctx, &pb.PutRequest{Key: req.Key, Value: req.Value, VectorClock: req.VectorClock})
	if err != nil {
		return nil, err
	}
	return &pb.ReplicateResponse{Success: resp.Success}, nil
}

func (s *fakeKVServer) Sync(req *pb.SyncRequest, stream grpc.ServerStreamingServer[pb.SyncEntry]) error {
	s.mu.Lock()
	entries := make([]*pb.SyncEntry, 0, len(s.data))
	for _, e := range s.data {
		entries = append(entries, &pb.SyncEntry{Key: e.Key, Value: e.Value, VectorClock: e.VectorClock})
	}
	s.mu.Unlock()
	for _, e := range entries {
		if err := stream.Send(e); err != nil {
			return err
		}
	}
	return nil
}

type staticResolver struct {
	mu      sync.Mutex
	workers map[string]model.WorkerInfo
}

func (r *staticResolver) Worker(id string) (model.WorkerInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.workers[id]
	return info, ok
}

func (r *staticResolver) set(id, addr string, port int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[id] = model.WorkerInfo{WorkerID: id, Address: addr, Port: port}
}

// bufNetwork routes dial targets to in-memory listeners
type bufNetwork struct {
	listeners map[string]*bufconn.Listener
}

func (n *bufNetwork) dialer(ctx context.Context, addr string) (net.Conn, error) {
	lis, ok := n.listeners[addr]
	if !ok {
		return nil, status.Error(codes.Unavailable, "no such worker")
	}
	return lis.DialContext(ctx)
}

func startFakeWorker(t *testing.T, network *bufNetwork, target string, srv pb.KVServiceServer) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	network.listeners[target] = lis
	s := grpc.NewServer()
	pb.RegisterKVServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)
}

func newTestClient(t *testing.T, opts ...Option) (*WorkerClient, *staticResolver, *bufNetwork) {
	t.Helper()
	resolver := &staticResolver{workers: make(map[string]model.WorkerInfo)}
	network := &bufNetwork{listeners: make(map[string]*bufconn.Listener)}
	opts = append([]Option{WithDialOptions(grpc.WithContextDialer(network.dialer))}, opts...)
	c := NewWorkerClient(resolver, metrics.NewMetrics(prometheus.NewRegistry()), zap.NewNop(), opts...)
	t.Cleanup(c.Close)
	return c, resolver, network
}

func TestWorkerClient_PutGet(t *testing.T) {
	c, resolver, network := newTestClient(t)
	srv := newFakeKVServer()
	startFakeWorker(t, network, "10.0.0.1:8001", srv)
	resolver.set("w1", "10.0.0.1", 8001)

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "w1", "foo", "bar", model.VectorClock{"v1": 42}))

	res, err := c.Get(ctx, "w1", "foo")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "bar", res.Value)
	assert.Equal(t, model.VectorClock{"v1": 42}, res.VectorClock)
	assert.Equal(t, "w1", res.WorkerID)

	res, err = c.Get(ctx, "w1", "missing")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestWorkerClient_Replicate(t *testing.T) {
	c, resolver, network := newTestClient(t)
	srv := newFakeKVServer()
	startFakeWorker(t, network, "10.0.0.1:8001", srv)
	resolver.set("w1", "10.0.0.1", 8001)

	require.NoError(t, c.Replicate(context.Background(), "w1", "k", "v", model.VectorClock{"v1": 1}))
	assert.Equal(t, "v", srv.data["k"].Value)
}

func TestWorkerClient_UnknownWorker(t *testing.T) {
	c, _, _ := newTestClient(t)

	err := c.Put(context.Background(), "ghost", "k", "v", nil)
	assert.ErrorIs(t, err, ErrWorkerUnavailable)

	_, err = c.Get(context.Background(), "ghost", "k")
	assert.ErrorIs(t, err, ErrWorkerUnavailable)

	_, err = c.GetAll(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrWorkerUnavailable)
}

func TestWorkerClient_Rejected(t *testing.T) {
	c, resolver, network := newTestClient(t)
	srv := newFakeKVServer()
	srv.rejectN = true
	startFakeWorker(t, network, "10.0.0.1:8001", srv)
	resolver.set("w1", "10.0.0.1", 8001)

	err := c.Put(context.Background(), "w1", "k", "v", nil)
	assert.ErrorIs(t, err, ErrWriteRejected)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWorkerClient_Deadline(t *testing.T) {
	c, resolver, network := newTestClient(t, WithTimeouts(50*time.Millisecond, 0))
	srv := newFakeKVServer()
	srv.delay = time.Second
	startFakeWorker(t, network, "10.0.0.1:8001", srv)
	resolver.set("w1", "10.0.0.1", 8001)

	err := c.Put(context.Background(), "w1", "k", "v", nil)
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestWorkerClient_GetAll(t *testing.T) {
	c, resolver, network := newTestClient(t)
	srv := newFakeKVServer()
	startFakeWorker(t, network, "10.0.0.1:8001", srv)
	resolver.set("w1", "10.0.0.1", 8001)

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "w1", "a", "1", nil))
	require.NoError(t, c.Put(ctx, "w1", "b", "2", nil))

	all, err := c.GetAll(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func TestWorkerClient_ReconnectsOnAddressChange(t *testing.T) {
	c, resolver, network := newTestClient(t)
	first := newFakeKVServer()
	second := newFakeKVServer()
	startFakeWorker(t, network, "10.0.0.1:8001", first)
	startFakeWorker(t, network, "10.0.0.2:8001", second)

	ctx := context.Background()
	resolver.set("w1", "10.0.0.1", 8001)
	require.NoError(t, c.Put(ctx, "w1", "k", "old-home", nil))

	resolver.set("w1", "10.0.0.2", 8001)
	require.NoError(t, c.Put(ctx, "w1", "k", "new-home", nil))

	assert.Equal(t, "old-home", first.data["k"].Value)
	assert.Equal(t, "new-home", second.data["k"].Value)
	assert.Len(t, c.connections, 1)
}

func TestWorkerClient_CloseConnection(t *testing.T) {
	c, resolver, network := newTestClient(t)
	startFakeWorker(t, network, "10.0.0.1:8001", newFakeKVServer())
	resolver.set("w1", "10.0.0.1", 8001)

	require.NoError(t, c.Put(context.Background(), "w1", "k", "v", nil))
	require.NoError(t, c.CloseConnection("w1"))
	assert.Empty(t, c.connections)
	require.NoError(t, c.CloseConnection("w1"))
}
