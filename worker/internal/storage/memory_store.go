package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/model"
	"github.com/distkv/distkv/worker/internal/storage/memtable"
)

// MemoryStore keeps entries in a skip list. Nothing survives a restart.
type MemoryStore struct {
	list   *memtable.SkipList
	closed bool
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		list:   memtable.NewSkipList(),
		logger: logger,
	}
}

// Put stores a copy of entry
func (s *MemoryStore) Put(ctx context.Context, entry model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.StoreClosed()
	}

	entry.VectorClock = entry.VectorClock.Copy()
	s.list.Insert(entry)
	return nil
}

// Get returns the entry stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) (model.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return model.Entry{}, false, errors.StoreClosed()
	}

	entry, ok := s.list.Search(key)
	if !ok {
		return model.Entry{}, false, nil
	}
	entry.VectorClock = entry.VectorClock.Copy()
	return entry, true, nil
}

// Scan walks a snapshot so fn may call back into the store
func (s *MemoryStore) Scan(ctx context.Context, fn func(model.Entry) error) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return errors.StoreClosed()
	}
	snapshot := make([]model.Entry, 0, s.list.Len())
	it := s.list.Iterator()
	for it.Next() {
		e := it.Entry()
		e.VectorClock = e.VectorClock.Copy()
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored keys
func (s *MemoryStore) Len(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(s.list.Len()), nil
}

// Ping fails once the store is closed
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.StoreClosed()
	}
	return nil
}

// Close marks the store closed
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
