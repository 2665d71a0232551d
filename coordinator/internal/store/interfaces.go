package store

import (
	"context"
	"errors"
)

// ErrCatalogClosed is returned by catalog operations after Close
var ErrCatalogClosed = errors.New("key catalog closed")

// KeyCatalog is the set of every key the coordinator has accepted a write
// for. It only grows; recovery walks it to re-replicate after an eviction.
type KeyCatalog interface {
	// Add inserts key. Adding a present key is a no-op.
	Add(ctx context.Context, key string) error
	// Range calls fn for every key until fn returns an error. Keys added
	// during the walk may or may not be visited.
	Range(ctx context.Context, fn func(key string) error) error
	// Len returns the number of keys
	Len(ctx context.Context) (int64, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
