package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/distkv/distkv/coordinator/internal/algorithm"
	"github.com/distkv/distkv/coordinator/internal/metrics"
	"github.com/distkv/distkv/coordinator/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestRegistry(t *testing.T) (*Registry, *algorithm.ConsistentHasher, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	ring := algorithm.NewConsistentHasher(algorithm.DefaultVirtualNodes)
	reg := NewRegistry(
		ring,
		store.NewInMemoryCatalog(zap.NewNop()),
		metrics.NewMetrics(prometheus.NewRegistry()),
		zap.NewNop(),
		WithClock(clock.Now),
	)
	return reg, ring, clock
}

func assertRingMatchesLiveMap(t *testing.T, reg *Registry, ring *algorithm.ConsistentHasher) {
	t.Helper()
	live := reg.ActiveWorkers()
	assert.Equal(t, len(live), ring.WorkerCount())
	for id := range live {
		assert.True(t, ring.Contains(id), "live worker %s missing from ring", id)
	}
	for _, vnode := range ring.Positions() {
		_, ok := live[vnode.WorkerID]
		assert.True(t, ok, "ring position for evicted worker %s", vnode.WorkerID)
	}
}

func TestRegistry_RegisterHeartbeat(t *testing.T) {
	reg, ring, clock := newTestRegistry(t)

	assert.True(t, reg.RegisterHeartbeat("w1", "1.2.3.4", 8001))
	assert.Len(t, reg.ActiveWorkers(), 1)
	assert.Len(t, ring.Positions(), 100)

	clock.Advance(time.Second)
	assert.False(t, reg.RegisterHeartbeat("w1", "1.2.3.4", 8001))
	assert.Len(t, ring.Positions(), 100)

	info, ok := reg.Worker("w1")
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4", info.Address)
	assert.Equal(t, 8001, info.Port)
	assert.Equal(t, clock.Now(), info.LastHeartbeat)
	assertRingMatchesLiveMap(t, reg, ring)
}

func TestRegistry_HeartbeatNeverMovesBackwards(t *testing.T) {
	reg, _, clock := newTestRegistry(t)

	reg.RegisterHeartbeat("w1", "a", 1)
	first, _ := reg.Worker("w1")

	clock.Advance(-time.Minute)
	reg.RegisterHeartbeat("w1", "b", 2)

	info, _ := reg.Worker("w1")
	assert.Equal(t, first.LastHeartbeat, info.LastHeartbeat)
	// Address is still refreshed
	assert.Equal(t, "b", info.Address)
}

func TestRegistry_SyncSource(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	reg.RegisterHeartbeat("w1", "1.2.3.4", 8001)
	_, ok := reg.SyncSource("w1")
	assert.False(t, ok)

	reg.RegisterHeartbeat("w3", "1.2.3.6", 8003)
	reg.RegisterHeartbeat("w2", "1.2.3.5", 8002)

	src, ok := reg.SyncSource("w3")
	require.True(t, ok)
	assert.Equal(t, "w1", src.WorkerID)

	src, ok = reg.SyncSource("w1")
	require.True(t, ok)
	assert.Equal(t, "w2", src.WorkerID)
}

func TestRegistry_ReapExpired(t *testing.T) {
	reg, ring, clock := newTestRegistry(t)

	var (
		mu      sync.Mutex
		evicted []string
	)
	reg.OnEviction(func(id string) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, id)
	})

	reg.RegisterHeartbeat("w1", "h1", 1)
	reg.RegisterHeartbeat("w2", "h2", 2)

	clock.Advance(4 * time.Second)
	reg.RegisterHeartbeat("w1", "h1", 1)

	// Exactly at the timeout the worker is still live
	clock.Advance(2 * time.Second)
	assert.Empty(t, reg.ReapExpired())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"w2"}, reg.ReapExpired())

	assert.False(t, reg.IsLive("w2"))
	assert.True(t, reg.IsLive("w1"))
	assert.Equal(t, []string{"w2"}, evicted)
	assertRingMatchesLiveMap(t, reg, ring)

	// A returning worker joins again
	assert.True(t, reg.RegisterHeartbeat("w2", "h2", 2))
	assertRingMatchesLiveMap(t, reg, ring)
}

func TestRegistry_EmptyRing(t *testing.T) {
	reg, _, clock := newTestRegistry(t)

	reg.RegisterHeartbeat("w1", "h1", 1)
	clock.Advance(10 * time.Second)
	reg.ReapExpired()

	assert.Empty(t, reg.ActiveWorkers())
	assert.Empty(t, reg.Replicas("foo", 3))
	_, ok := reg.Primary("foo")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentHeartbeatsAndReaps(t *testing.T) {
	reg, ring, clock := newTestRegistry(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				reg.RegisterHeartbeat(fmt.Sprintf("w%d", (g+i)%5), "h", 1)
				if i%10 == 0 {
					clock.Advance(7 * time.Second)
					reg.ReapExpired()
				}
			}
		}(g)
	}
	wg.Wait()

	assertRingMatchesLiveMap(t, reg, ring)
}

func TestRegistry_RegisterKey(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.RegisterKey(ctx, "foo"))
	require.NoError(t, reg.RegisterKey(ctx, "foo"))
	n, err := reg.Catalog().Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegistry_WorkerIDsSorted(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	reg.RegisterHeartbeat("w3", "h", 3)
	reg.RegisterHeartbeat("w1", "h", 1)
	reg.RegisterHeartbeat("w2", "h", 2)

	assert.Equal(t, []string{"w1", "w2", "w3"}, reg.WorkerIDs())
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reg.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
