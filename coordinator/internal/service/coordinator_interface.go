package service

import (
	"context"

	"github.com/distkv/distkv/coordinator/internal/client"
	"github.com/distkv/distkv/coordinator/internal/model"
)

// Replicator is the slice of the worker client pool the replication paths use
type Replicator interface {
	Put(ctx context.Context, workerID, key, value string, vc model.VectorClock) error
	Get(ctx context.Context, workerID, key string) (*client.GetResult, error)
	Replicate(ctx context.Context, workerID, key, value string, vc model.VectorClock) error
}

// Membership answers placement and liveness questions
type Membership interface {
	RegisterKey(ctx context.Context, key string) error
	Replicas(key string, n int) []string
	IsLive(workerID string) bool
}

// Scheduler runs fire-and-forget background work
type Scheduler interface {
	Go(name string, fn func(context.Context) error) bool
}

var (
	_ Replicator = (*client.WorkerClient)(nil)
)
