package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/model"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key          TEXT PRIMARY KEY,
		value        TEXT,
		vector_clock JSONB
	)
`

// PostgresStore keeps entries in the kv_store table
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and ensures the table exists
func NewPostgresStore(ctx context.Context, opts PostgresOptions, logger *zap.Logger) (*PostgresStore, error) {
	config, err := poolConfig(opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	logger.Info("Connected to postgres store",
		zap.String("host", opts.Host),
		zap.Int("port", opts.Port),
		zap.String("database", opts.Database))

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// poolConfig builds the pool config from opts. Every value is quoted so
// spaces, quotes or '=' in a password cannot change other settings.
func poolConfig(opts PostgresOptions) (*pgxpool.Config, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s pool_max_conns=%d pool_min_conns=%d",
		quoteConnValue(opts.Host), opts.Port, quoteConnValue(opts.Database),
		quoteConnValue(opts.User), quoteConnValue(opts.Password),
		opts.MaxConnections, opts.MinConnections,
	)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres options: %w", err)
	}
	return config, nil
}

var connValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteConnValue renders v as a single-quoted keyword/value connection
// string value
func quoteConnValue(v string) string {
	return "'" + connValueEscaper.Replace(v) + "'"
}

// Put upserts the row for entry.Key
func (s *PostgresStore) Put(ctx context.Context, entry model.Entry) error {
	query := `
		INSERT INTO kv_store (key, value, vector_clock)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, vector_clock = EXCLUDED.vector_clock
	`

	clock, err := json.Marshal(entry.VectorClock)
	if err != nil {
		return errors.InternalError("failed to encode vector clock", err)
	}

	if _, err := s.pool.Exec(ctx, query, entry.Key, entry.Value, clock); err != nil {
		return errors.Unavailable("postgres put failed", err)
	}
	return nil
}

// Get reads the row for key
func (s *PostgresStore) Get(ctx context.Context, key string) (model.Entry, bool, error) {
	query := `SELECT value, vector_clock FROM kv_store WHERE key = $1`

	var (
		value string
		clock []byte
	)
	err := s.pool.QueryRow(ctx, query, key).Scan(&value, &clock)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return model.Entry{}, false, nil
	}
	if err != nil {
		return model.Entry{}, false, errors.Unavailable("postgres get failed", err)
	}

	entry, err := rowToEntry(key, value, clock)
	if err != nil {
		return model.Entry{}, false, err
	}
	return entry, true, nil
}

// Scan streams every row in key order
func (s *PostgresStore) Scan(ctx context.Context, fn func(model.Entry) error) error {
	rows, err := s.pool.Query(ctx, `SELECT key, value, vector_clock FROM kv_store ORDER BY key`)
	if err != nil {
		return errors.Unavailable("postgres scan failed", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, value string
			clock      []byte
		)
		if err := rows.Scan(&key, &value, &clock); err != nil {
			return errors.InternalError("failed to scan row", err)
		}
		entry, err := rowToEntry(key, value, clock)
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return errors.Unavailable("postgres scan failed", err)
	}
	return nil
}

// Len counts rows
func (s *PostgresStore) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM kv_store`).Scan(&n); err != nil {
		return 0, errors.Unavailable("postgres count failed", err)
	}
	return n, nil
}

// Ping checks the connection pool
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Unavailable("postgres ping failed", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func rowToEntry(key, value string, clock []byte) (model.Entry, error) {
	entry := model.Entry{Key: key, Value: value}
	if len(clock) == 0 {
		return entry, nil
	}
	if err := json.Unmarshal(clock, &entry.VectorClock); err != nil {
		return model.Entry{}, errors.CorruptedData(fmt.Sprintf("vector clock of %q is not valid json", key), err)
	}
	return entry, nil
}
