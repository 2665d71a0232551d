package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/registry"
	"github.com/distkv/distkv/coordinator/internal/store"
	pb "github.com/distkv/distkv/pkg/proto"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	logger := zap.NewNop()
	return registry.NewRegistry(
		algorithm.NewConsistentHasher(algorithm.DefaultVirtualNodes),
		store.NewInMemoryCatalog(logger),
		metrics.NewMetrics(prometheus.NewRegistry()),
		logger,
	)
}

func startHeartbeatServer(t *testing.T, reg HeartbeatRegistry) pb.HealthServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterHealthServiceServer(srv, NewHeartbeatHandler(reg, zap.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewHealthServiceClient(conn)
}

func beat(t *testing.T, stream pb.HealthService_HeartbeatClient, req *pb.HeartbeatRequest) *pb.HeartbeatResponse {
	t.Helper()
	require.NoError(t, stream.Send(req))
	resp, err := stream.Recv()
	require.NoError(t, err)
	return resp
}

func TestHeartbeat_JoinAndSyncHint(t *testing.T) {
	reg := newTestRegistry(t)
	client := startHeartbeatServer(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	w1, err := client.Heartbeat(ctx)
	require.NoError(t, err)

	resp := beat(t, w1, &pb.HeartbeatRequest{WorkerId: "w1", Address: "1.2.3.4", Port: 8001})
	assert.Equal(t, HeartbeatStatusOK, resp.GetStatus())
	assert.Empty(t, resp.GetSyncFromAddress())
	assert.Zero(t, resp.GetSyncFromPort())
	assert.Len(t, reg.ActiveWorkers(), 1)

	w2, err := client.Heartbeat(ctx)
	require.NoError(t, err)

	resp = beat(t, w2, &pb.HeartbeatRequest{WorkerId: "w2", Address: "1.2.3.5", Port: 8002})
	assert.Equal(t, "1.2.3.4", resp.GetSyncFromAddress())
	assert.Equal(t, int32(8001), resp.GetSyncFromPort())

	// Refreshes never carry a hint
	resp = beat(t, w2, &pb.HeartbeatRequest{WorkerId: "w2", Address: "1.2.3.5", Port: 8002})
	assert.Empty(t, resp.GetSyncFromAddress())
	resp = beat(t, w1, &pb.HeartbeatRequest{WorkerId: "w1", Address: "1.2.3.4", Port: 8001})
	assert.Empty(t, resp.GetSyncFromAddress())

	require.NoError(t, w1.CloseSend())
	require.NoError(t, w2.CloseSend())
}

func TestHeartbeat_EmptyWorkerIDIgnored(t *testing.T) {
	reg := newTestRegistry(t)
	client := startHeartbeatServer(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Heartbeat(ctx)
	require.NoError(t, err)

	resp := beat(t, stream, &pb.HeartbeatRequest{Address: "1.2.3.4", Port: 8001})
	assert.Equal(t, HeartbeatStatusOK, resp.GetStatus())
	assert.Empty(t, reg.ActiveWorkers())
}

func TestHeartbeat_ServerKeepsStreamOpen(t *testing.T) {
	reg := newTestRegistry(t)
	client := startHeartbeatServer(t, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Heartbeat(ctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		resp := beat(t, stream, &pb.HeartbeatRequest{WorkerId: "w1", Address: "10.0.0.1", Port: 9000})
		assert.Equal(t, HeartbeatStatusOK, resp.GetStatus())
	}
	assert.True(t, reg.IsLive("w1"))
}
