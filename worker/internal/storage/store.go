// Package storage holds the worker's local key-value engines. Every engine
// is an ordered map from key to the latest written entry; a write replaces
// the stored entry unconditionally.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/model"
)

// Store is a worker's local key-value store
type Store interface {
	// Put replaces the entry stored under entry.Key
	Put(ctx context.Context, entry model.Entry) error
	// Get returns the entry under key; found is false when absent
	Get(ctx context.Context, key string) (entry model.Entry, found bool, err error)
	// Scan calls fn for every entry in key order until fn returns an error
	Scan(ctx context.Context, fn func(model.Entry) error) error
	// Len returns the number of stored keys
	Len(ctx context.Context) (int64, error)
	// Ping reports whether the store can serve requests
	Ping(ctx context.Context) error
	Close() error
}

const (
	EngineBolt     = "bolt"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

// Options selects and configures a storage engine
type Options struct {
	Engine   string
	BoltPath string
	Postgres PostgresOptions
}

// PostgresOptions configures the postgres engine
type PostgresOptions struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	MaxConnections int
	MinConnections int
}

// Open creates the engine named by opts.Engine
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	switch opts.Engine {
	case EngineBolt:
		return NewBoltStore(opts.BoltPath, logger)
	case EnginePostgres:
		return NewPostgresStore(ctx, opts.Postgres, logger)
	case EngineMemory:
		return NewMemoryStore(logger), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", opts.Engine)
	}
}
