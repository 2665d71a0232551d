package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultCatalogKey is the Redis set holding the catalog
	DefaultCatalogKey = "distkv:catalog"
	scanBatchSize     = 500
)

// RedisCatalog implements KeyCatalog on a Redis set so the catalog survives
// coordinator restarts
type RedisCatalog struct {
	client *redis.Client
	setKey string
	logger *zap.Logger
}

// NewRedisCatalog creates a new Redis-backed key catalog
func NewRedisCatalog(host string, port int, password string, db int, logger *zap.Logger) (*RedisCatalog, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis key catalog", zap.String("address", addr))

	return newRedisCatalog(client, DefaultCatalogKey, logger), nil
}

func newRedisCatalog(client *redis.Client, setKey string, logger *zap.Logger) *RedisCatalog {
	return &RedisCatalog{
		client: client,
		setKey: setKey,
		logger: logger,
	}
}

// Add inserts a key into the catalog set
func (s *RedisCatalog) Add(ctx context.Context, key string) error {
	if err := s.client.SAdd(ctx, s.setKey, key).Err(); err != nil {
		return fmt.Errorf("failed to add key to catalog: %w", err)
	}
	return nil
}

// Range walks the set with SSCAN
func (s *RedisCatalog) Range(ctx context.Context, fn func(key string) error) error {
	iter := s.client.SScan(ctx, s.setKey, 0, "", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog: %w", err)
	}
	return nil
}

// Len returns the set cardinality
func (s *RedisCatalog) Len(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, s.setKey).Result()
}

// Ping checks the Redis connection
func (s *RedisCatalog) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisCatalog) Close() error {
	return s.client.Close()
}
