package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/model"
)

// engines returns a constructor per engine available in this environment
func engines(t *testing.T) map[string]func(t *testing.T) Store {
	out := map[string]func(t *testing.T) Store{
		EngineMemory: func(t *testing.T) Store {
			return NewMemoryStore(zap.NewNop())
		},
		EngineBolt: func(t *testing.T) Store {
			s, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "kv.db"), zap.NewNop())
			require.NoError(t, err)
			return s
		},
	}

	if host := os.Getenv("TEST_POSTGRES_HOST"); host != "" {
		out[EnginePostgres] = func(t *testing.T) Store {
			port, _ := strconv.Atoi(os.Getenv("TEST_POSTGRES_PORT"))
			if port == 0 {
				port = 5432
			}
			s, err := NewPostgresStore(context.Background(), PostgresOptions{
				Host:           host,
				Port:           port,
				Database:       os.Getenv("TEST_POSTGRES_DB"),
				User:           os.Getenv("TEST_POSTGRES_USER"),
				Password:       os.Getenv("TEST_POSTGRES_PASSWORD"),
				MaxConnections: 4,
				MinConnections: 1,
			}, zap.NewNop())
			require.NoError(t, err)
			_, err = s.pool.Exec(context.Background(), `TRUNCATE kv_store`)
			require.NoError(t, err)
			return s
		}
	}
	return out
}

func forEachEngine(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, open := range engines(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func TestStore_PutGet(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, found, err := s.Get(ctx, "foo")
		require.NoError(t, err)
		assert.False(t, found)

		in := model.Entry{Key: "foo", Value: "bar", VectorClock: model.VectorClock{"v1": 100}}
		require.NoError(t, s.Put(ctx, in))

		got, found, err := s.Get(ctx, "foo")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, in, got)
	})
}

func TestStore_PutOverwritesUnconditionally(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, model.Entry{Key: "foo", Value: "new", VectorClock: model.VectorClock{"v1": 200}}))
		// An older clock still wins because it was written last
		require.NoError(t, s.Put(ctx, model.Entry{Key: "foo", Value: "old", VectorClock: model.VectorClock{"v1": 100}}))

		got, found, err := s.Get(ctx, "foo")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "old", got.Value)
		assert.Equal(t, uint64(100), got.VectorClock["v1"])

		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestStore_ScanOrdered(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for _, k := range []string{"c", "a", "d", "b"} {
			require.NoError(t, s.Put(ctx, model.Entry{Key: k, Value: "v-" + k, VectorClock: model.VectorClock{"v1": 1}}))
		}

		var keys []string
		require.NoError(t, s.Scan(ctx, func(e model.Entry) error {
			keys = append(keys, e.Key)
			assert.Equal(t, "v-"+e.Key, e.Value)
			return nil
		}))
		assert.Equal(t, []string{"a", "b", "c", "d"}, keys)

		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestStore_ScanStopsOnError(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Put(ctx, model.Entry{Key: fmt.Sprint(i), Value: "x"}))
		}

		stop := errors.New("stop")
		seen := 0
		err := s.Scan(ctx, func(model.Entry) error {
			seen++
			if seen == 2 {
				return stop
			}
			return nil
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 2, seen)
	})
}

func TestStore_ConcurrentPuts(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Put(ctx, model.Entry{Key: fmt.Sprintf("key-%02d", i), Value: "v"}))
			}(i)
		}
		wg.Wait()

		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(20), n)
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := NewBoltStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, model.Entry{Key: "foo", Value: "bar", VectorClock: model.VectorClock{"v1": 7}}))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	got, found, err := s.Get(ctx, "foo")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bar", got.Value)
	assert.Equal(t, uint64(7), got.VectorClock["v1"])
}

func TestBoltStore_ScanAcrossBatches(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "kv.db"), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	s.scanBatch = 2
	ctx := context.Background()

	want := []string{"k1", "k2", "k3", "k4", "k5", "k6"}
	for _, k := range want {
		require.NoError(t, s.Put(ctx, model.Entry{Key: k, Value: "v"}))
	}

	var keys []string
	require.NoError(t, s.Scan(ctx, func(e model.Entry) error {
		keys = append(keys, e.Key)
		return nil
	}))
	assert.Equal(t, want, keys)
}

func TestBoltStore_WriteDuringScan(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "kv.db"), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	s.scanBatch = 2
	ctx := context.Background()

	for _, k := range []string{"k1", "k2", "k3", "k4", "k5"} {
		require.NoError(t, s.Put(ctx, model.Entry{Key: k, Value: "v"}))
	}

	// large values make bbolt grow its mmap, which waits for open readers
	big := strings.Repeat("x", 1<<20)
	var keys []string
	done := make(chan error, 1)
	go func() {
		done <- s.Scan(ctx, func(e model.Entry) error {
			keys = append(keys, e.Key)
			return s.Put(ctx, model.Entry{Key: "a-" + e.Key, Value: big})
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Put blocked behind Scan")
	}
	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5"}, keys)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestBoltStore_ScanCancelled(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "kv.db"), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	s.scanBatch = 1
	ctx, cancel := context.WithCancel(context.Background())

	for _, k := range []string{"k1", "k2", "k3"} {
		require.NoError(t, s.Put(ctx, model.Entry{Key: k, Value: "v"}))
	}

	seen := 0
	err = s.Scan(ctx, func(model.Entry) error {
		seen++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, seen)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	require.NoError(t, s.Close())

	assert.Error(t, s.Put(context.Background(), model.Entry{Key: "k"}))
	assert.Error(t, s.Ping(context.Background()))
}

func TestOpen_UnknownEngine(t *testing.T) {
	_, err := Open(context.Background(), Options{Engine: "leveldb"}, zap.NewNop())
	assert.Error(t, err)
}
