package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/model"
)

// MockReplicator is a mock implementation of Replicator
type MockReplicator struct {
	mock.Mock
}

func (m *MockReplicator) Put(ctx context.Context, workerID, key, value string, vc model.VectorClock) error {
	args := m.Called(ctx, workerID, key, value, vc)
	return args.Error(0)
}

func (m *MockReplicator) Get(ctx context.Context, workerID, key string) (*client.GetResult, error) {
	args := m.Called(ctx, workerID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.GetResult), args.Error(1)
}

func (m *MockReplicator) Replicate(ctx context.Context, workerID, key, value string, vc model.VectorClock) error {
	args := m.Called(ctx, workerID, key, value, vc)
	return args.Error(0)
}

// fakeMembership serves fixed replica sets
type fakeMembership struct {
	mu          sync.Mutex
	replicas    map[string][]string
	live        map[string]bool
	registered  []string
	registerErr error
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{
		replicas: make(map[string][]string),
		live:     make(map[string]bool),
	}
}

func (f *fakeMembership) RegisterKey(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, key)
	return f.registerErr
}

func (f *fakeMembership) Replicas(key string, n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.replicas[key]
	if len(r) > n {
		r = r[:n]
	}
	return append([]string(nil), r...)
}

func (f *fakeMembership) IsLive(workerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[workerID]
}

func (f *fakeMembership) place(key string, replicas ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replicas[key] = replicas
	for _, r := range replicas {
		f.live[r] = true
	}
}

// queuedScheduler records background tasks so tests can run them on demand
type queuedScheduler struct {
	mu    sync.Mutex
	names []string
	tasks []func(context.Context) error
}

func (q *queuedScheduler) Go(name string, fn func(context.Context) error) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.names = append(q.names, name)
	q.tasks = append(q.tasks, fn)
	return true
}

func (q *queuedScheduler) runAll() []error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var errs []error
	for _, fn := range tasks {
		errs = append(errs, fn(context.Background()))
	}
	return errs
}
