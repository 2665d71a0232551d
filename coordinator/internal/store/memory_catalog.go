package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// InMemoryCatalog implements KeyCatalog using an in-memory set
type InMemoryCatalog struct {
	keys   map[string]struct{}
	closed bool
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewInMemoryCatalog creates a new in-memory key catalog
func NewInMemoryCatalog(logger *zap.Logger) *InMemoryCatalog {
	return &InMemoryCatalog{
		keys:   make(map[string]struct{}),
		logger: logger,
	}
}

// Add inserts a key into the catalog
func (c *InMemoryCatalog) Add(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCatalogClosed
	}
	c.keys[key] = struct{}{}
	return nil
}

// Range walks a snapshot of the catalog so fn may block without holding the lock
func (c *InMemoryCatalog) Range(ctx context.Context, fn func(key string) error) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrCatalogClosed
	}
	snapshot := make([]string, 0, len(c.keys))
	for key := range c.keys {
		snapshot = append(snapshot, key)
	}
	c.mu.RUnlock()

	for _, key := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of keys in the catalog
func (c *InMemoryCatalog) Len(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.keys)), nil
}

// Ping always succeeds while the catalog is open
func (c *InMemoryCatalog) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrCatalogClosed
	}
	return nil
}

// Close marks the catalog closed
func (c *InMemoryCatalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
