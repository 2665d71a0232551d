package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/model"
)

var bucketKV = []byte("kv_store")

// scanBatchSize bounds how many entries one Scan read transaction copies out
const scanBatchSize = 256

// BoltStore persists entries in a single bbolt bucket. bbolt keeps keys
// sorted, so Scan is ordered.
type BoltStore struct {
	db        *bbolt.DB
	path      string
	scanBatch int
	logger    *zap.Logger
}

// NewBoltStore opens (or creates) the database file at path
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Info("Opened bolt store", zap.String("path", path))

	return &BoltStore{db: db, path: path, scanBatch: scanBatchSize, logger: logger}, nil
}

// Put writes entry in its own transaction
func (s *BoltStore) Put(ctx context.Context, entry model.Entry) error {
	raw, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(entry.Key), raw)
	})
	if err != nil {
		return s.wrap("put", err)
	}
	return nil
}

// Get reads the entry stored under key
func (s *BoltStore) Get(ctx context.Context, key string) (model.Entry, bool, error) {
	var (
		entry model.Entry
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketKV).Get([]byte(key))
		if raw == nil {
			return nil
		}
		// raw is only valid inside the transaction; decode copies it out
		e, err := decodeEntry(key, raw)
		if err != nil {
			return err
		}
		entry, found = e, true
		return nil
	})
	if err != nil {
		return model.Entry{}, false, s.wrap("get", err)
	}
	return entry, found, nil
}

// Scan walks the bucket in key order. Each batch is copied out under its
// own short read transaction; fn always runs with no transaction open.
func (s *BoltStore) Scan(ctx context.Context, fn func(model.Entry) error) error {
	var after []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := s.nextBatch(after)
		if err != nil {
			return s.wrap("scan", err)
		}
		for _, entry := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		if len(batch) < s.scanBatch {
			return nil
		}
		after = []byte(batch[len(batch)-1].Key)
	}
}

// nextBatch returns up to scanBatch entries with keys strictly after
// after, or from the first key when after is nil
func (s *BoltStore) nextBatch(after []byte) ([]model.Entry, error) {
	batch := make([]model.Entry, 0, s.scanBatch)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketKV).Cursor()

		var k, v []byte
		if after == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(after)
			if k != nil && bytes.Equal(k, after) {
				k, v = c.Next()
			}
		}

		for ; k != nil && len(batch) < s.scanBatch; k, v = c.Next() {
			entry, err := decodeEntry(string(k), v)
			if err != nil {
				return err
			}
			batch = append(batch, entry)
		}
		return nil
	})
	return batch, err
}

// Len returns the number of keys in the bucket
func (s *BoltStore) Len(ctx context.Context) (int64, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketKV).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, s.wrap("len", err)
	}
	return int64(n), nil
}

// Ping opens a read transaction
func (s *BoltStore) Ping(ctx context.Context) error {
	return s.wrap("ping", s.db.View(func(tx *bbolt.Tx) error { return nil }))
}

// Close closes the database file
func (s *BoltStore) Close() error {
	s.logger.Info("Closing bolt store", zap.String("path", s.path))
	return s.db.Close()
}

func (s *BoltStore) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, bbolt.ErrDatabaseNotOpen):
		return errors.StoreClosed()
	case errors.IsStorageError(err):
		return err
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.InternalError(fmt.Sprintf("bolt %s failed", op), err)
	}
}
