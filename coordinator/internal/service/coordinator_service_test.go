package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/model"
	"github.com/distkv/distkv/pkg/logging"
)

var fixedNow = time.UnixMilli(1_700_000_000_123)

func newTestCoordinator(t *testing.T) (*CoordinatorService, *fakeMembership, *MockReplicator, *queuedScheduler) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	membership := newFakeMembership()
	replicator := new(MockReplicator)
	sched := &queuedScheduler{}
	conflict := NewConflictService(replicator, nil, m, zap.NewNop())
	svc := NewCoordinatorService(membership, replicator, conflict, sched, m, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, membership, replicator, sched
}

var ctxAny = mock.Anything

func TestWriteKeyValue_InsufficientReplicas(t *testing.T) {
	svc, membership, replicator, _ := newTestCoordinator(t)
	membership.place("x", "w1")

	_, err := svc.WriteKeyValue(context.Background(), "x", "v")
	assert.ErrorIs(t, err, ErrInsufficientReplicas)

	// Catalogued regardless
	assert.Equal(t, []string{"x"}, membership.registered)
	replicator.AssertNotCalled(t, "Put", ctxAny, ctxAny, ctxAny, ctxAny, ctxAny)
}

func TestWriteKeyValue_EmptyRing(t *testing.T) {
	svc, _, _, _ := newTestCoordinator(t)

	_, err := svc.WriteKeyValue(context.Background(), "x", "v")
	assert.ErrorIs(t, err, ErrInsufficientReplicas)
}

func TestWriteKeyValue_RegisterKeyFails(t *testing.T) {
	svc, membership, _, _ := newTestCoordinator(t)
	membership.place("x", "w1", "w2")
	membership.registerErr = errors.New("redis down")

	_, err := svc.WriteKeyValue(context.Background(), "x", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestWriteKeyValue_QuorumWithAsyncThird(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("foo", "w2", "w3", "w1")
	vc := model.VectorClock{"v1": uint64(fixedNow.UnixMilli())}

	replicator.On("Put", ctxAny, "w2", "foo", "bar", vc).Return(nil)
	replicator.On("Put", ctxAny, "w3", "foo", "bar", vc).Return(nil)
	replicator.On("Replicate", ctxAny, "w1", "foo", "bar", vc).Return(nil)

	result, err := svc.WriteKeyValue(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"w2", "w3"}, result.SyncReplicas)
	assert.Equal(t, "w1", result.AsyncReplica)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, vc, result.VectorClock)

	// The third copy only goes out in the background
	replicator.AssertNotCalled(t, "Replicate", ctxAny, ctxAny, ctxAny, ctxAny, ctxAny)
	assert.Equal(t, []string{"async-replicate"}, sched.names)
	for _, err := range sched.runAll() {
		assert.NoError(t, err)
	}
	replicator.AssertCalled(t, "Replicate", ctxAny, "w1", "foo", "bar", vc)
	replicator.AssertNotCalled(t, "Put", ctxAny, "w1", ctxAny, ctxAny, ctxAny)
}

func TestWriteKeyValue_AsyncThirdFailureIsNotSurfaced(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("foo", "w2", "w3", "w1")

	replicator.On("Put", ctxAny, ctxAny, ctxAny, ctxAny, ctxAny).Return(nil)
	replicator.On("Replicate", ctxAny, "w1", ctxAny, ctxAny, ctxAny).Return(errors.New("unreachable"))

	result, err := svc.WriteKeyValue(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, "w1", result.AsyncReplica)

	errs := sched.runAll()
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
}

func TestWriteKeyValue_TertiaryFallback(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("foo", "w2", "w3", "w1")

	replicator.On("Put", ctxAny, "w2", "foo", "bar", ctxAny).Return(nil)
	replicator.On("Put", ctxAny, "w3", "foo", "bar", ctxAny).Return(context.DeadlineExceeded)
	replicator.On("Put", ctxAny, "w1", "foo", "bar", ctxAny).Return(nil)

	result, err := svc.WriteKeyValue(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"w2", "w1"}, result.SyncReplicas)
	assert.Empty(t, result.AsyncReplica)
	assert.True(t, result.FallbackUsed)
	assert.Empty(t, sched.names)
	replicator.AssertNotCalled(t, "Replicate", ctxAny, ctxAny, ctxAny, ctxAny, ctxAny)
}

func TestWriteKeyValue_QuorumNotReached(t *testing.T) {
	tests := []struct {
		name      string
		replicas  []string
		failing   map[string]bool
		successes int
	}{
		{"one primary and tertiary down", []string{"w1", "w2", "w3"}, map[string]bool{"w2": true, "w3": true}, 1},
		{"everything down", []string{"w1", "w2", "w3"}, map[string]bool{"w1": true, "w2": true, "w3": true}, 0},
		{"two replicas one down", []string{"w1", "w2"}, map[string]bool{"w2": true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, membership, replicator, _ := newTestCoordinator(t)
			membership.place("k", tt.replicas...)
			for _, r := range tt.replicas {
				var err error
				if tt.failing[r] {
					err = client.ErrWriteRejected
				}
				replicator.On("Put", ctxAny, r, "k", "v", ctxAny).Return(err)
			}

			_, err := svc.WriteKeyValue(context.Background(), "k", "v")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrQuorumNotReached)

			var qe *QuorumError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.successes, qe.Successes)
		})
	}
}

func TestWriteKeyValue_UsesRequestLogger(t *testing.T) {
	svc, membership, replicator, _ := newTestCoordinator(t)
	membership.place("k", "w1", "w2", "w3")
	replicator.On("Put", ctxAny, "w1", "k", "v", ctxAny).Return(client.ErrWriteRejected)
	replicator.On("Put", ctxAny, "w2", "k", "v", ctxAny).Return(client.ErrWriteRejected)
	replicator.On("Put", ctxAny, "w3", "k", "v", ctxAny).Return(client.ErrWriteRejected)

	core, logs := observer.New(zap.InfoLevel)
	ctx := logging.WithLogger(context.Background(), zap.New(core).With(zap.String("request_id", "req-1")))

	_, err := svc.WriteKeyValue(ctx, "k", "v")
	require.ErrorIs(t, err, ErrQuorumNotReached)

	require.NotZero(t, logs.Len())
	for _, e := range logs.All() {
		assert.Equal(t, "req-1", e.ContextMap()["request_id"], e.Message)
	}
	assert.NotZero(t, logs.FilterMessage("Write failed to reach quorum").Len())
}

func TestWriteKeyValue_TwoReplicasNoTertiary(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("k", "w1", "w2")
	replicator.On("Put", ctxAny, ctxAny, "k", "v", ctxAny).Return(nil)

	result, err := svc.WriteKeyValue(context.Background(), "k", "v")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, result.SyncReplicas)
	assert.Empty(t, result.AsyncReplica)
	assert.False(t, result.FallbackUsed)
	assert.Empty(t, sched.names)
}

func found(workerID, value string, vc model.VectorClock) *client.GetResult {
	return &client.GetResult{WorkerID: workerID, Found: true, Value: value, VectorClock: vc}
}

func notFound(workerID string) *client.GetResult {
	return &client.GetResult{WorkerID: workerID}
}

func TestReadKeyValue_ReadRepair(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("foo", "w1", "w2", "w3")

	newVC := model.VectorClock{"v1": 200}
	replicator.On("Get", ctxAny, "w1", "foo").Return(found("w1", "old", model.VectorClock{"v1": 100}), nil)
	replicator.On("Get", ctxAny, "w2", "foo").Return(found("w2", "new", newVC), nil)
	replicator.On("Get", ctxAny, "w3", "foo").Return(notFound("w3"), nil)
	replicator.On("Put", ctxAny, "w1", "foo", "new", newVC).Return(nil)
	replicator.On("Put", ctxAny, "w3", "foo", "new", newVC).Return(nil)

	result, err := svc.ReadKeyValue(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "new", result.Value)
	assert.Equal(t, "w2", result.Source)

	// Repair runs in the background only
	replicator.AssertNotCalled(t, "Put", ctxAny, ctxAny, ctxAny, ctxAny, ctxAny)
	assert.Equal(t, []string{"read-repair"}, sched.names)
	sched.runAll()

	replicator.AssertCalled(t, "Put", ctxAny, "w1", "foo", "new", newVC)
	replicator.AssertCalled(t, "Put", ctxAny, "w3", "foo", "new", newVC)
	replicator.AssertNotCalled(t, "Put", ctxAny, "w2", ctxAny, ctxAny, ctxAny)
}

func TestReadKeyValue_NoRepairWhenConsistent(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("k", "w1", "w2", "w3")
	vc := model.VectorClock{"v1": 5}
	for _, w := range []string{"w1", "w2", "w3"} {
		replicator.On("Get", ctxAny, w, "k").Return(found(w, "v", vc), nil)
	}

	result, err := svc.ReadKeyValue(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "w1", result.Source)
	assert.Empty(t, sched.names)
}

func TestReadKeyValue_TieGoesToFirstReplica(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("k", "w1", "w2", "w3")

	// Disjoint components with equal sums
	replicator.On("Get", ctxAny, "w1", "k").Return(notFound("w1"), nil)
	replicator.On("Get", ctxAny, "w2", "k").Return(found("w2", "a", model.VectorClock{"x": 7}), nil)
	replicator.On("Get", ctxAny, "w3", "k").Return(found("w3", "b", model.VectorClock{"y": 7}), nil)
	replicator.On("Put", ctxAny, "w1", "k", "a", ctxAny).Return(nil)

	result, err := svc.ReadKeyValue(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "a", result.Value)
	assert.Equal(t, "w2", result.Source)

	// w3 ties and is not strictly older, so only w1 is repaired
	sched.runAll()
	replicator.AssertCalled(t, "Put", ctxAny, "w1", "k", "a", ctxAny)
	replicator.AssertNotCalled(t, "Put", ctxAny, "w3", ctxAny, ctxAny, ctxAny)
}

func TestReadKeyValue_UnreachableReplicaIsSkippedAndRepaired(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("k", "w1", "w2")
	vc := model.VectorClock{"v1": 9}

	replicator.On("Get", ctxAny, "w1", "k").Return(nil, errors.New("connection refused"))
	replicator.On("Get", ctxAny, "w2", "k").Return(found("w2", "v", vc), nil)
	replicator.On("Put", ctxAny, "w1", "k", "v", vc).Return(errors.New("connection refused"))

	result, err := svc.ReadKeyValue(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "w2", result.Source)

	// Repair failures are swallowed
	for _, err := range sched.runAll() {
		assert.NoError(t, err)
	}
	replicator.AssertCalled(t, "Put", ctxAny, "w1", "k", "v", vc)
}

func TestReadKeyValue_NotFound(t *testing.T) {
	svc, membership, replicator, sched := newTestCoordinator(t)
	membership.place("k", "w1", "w2", "w3")
	replicator.On("Get", ctxAny, "w1", "k").Return(notFound("w1"), nil)
	replicator.On("Get", ctxAny, "w2", "k").Return(nil, errors.New("timeout"))
	replicator.On("Get", ctxAny, "w3", "k").Return(notFound("w3"), nil)

	_, err := svc.ReadKeyValue(context.Background(), "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Empty(t, sched.names)
}

func TestReadKeyValue_EmptyRing(t *testing.T) {
	svc, _, replicator, _ := newTestCoordinator(t)

	_, err := svc.ReadKeyValue(context.Background(), "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	replicator.AssertNotCalled(t, "Get", ctxAny, ctxAny, ctxAny)
}

func TestReadKeyValue_SingleWorker(t *testing.T) {
	svc, membership, replicator, _ := newTestCoordinator(t)
	membership.place("k", "w1")
	replicator.On("Get", ctxAny, "w1", "k").Return(found("w1", "v", model.VectorClock{"v1": 1}), nil)

	result, err := svc.ReadKeyValue(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", result.Value)
}
