// Package sqlite implements the dashboard key-value store on top of SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/hr-dashboard/internal/persistence"
	"github.com/example/hr-dashboard/internal/persistence/sqlite/migrations"
)

// Storage persists key-value pairs in the kv_entries table.
type Storage struct {
	pool  *ConnectionPool
	retry *RetryHelper
	now   func() time.Time
}

var _ persistence.KeyValueStore = (*Storage)(nil)

// Open connects to cfg.DSN and applies the embedded migrations.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	set, err := LoadMigrations(migrations.FS, ".")
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	if _, err := ApplyMigrations(ctx, pool, set, logger); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
		now:   time.Now,
	}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	return s.pool.Close()
}

// Ping checks connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Get returns the value stored under key or persistence.ErrNotFound.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.retry.Do(ctx, func() error {
		return s.pool.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put writes value under key, replacing any previous value.
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return s.retry.Do(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				key, value, s.now().UTC().UnixMilli(),
			)
			return err
		})
	})
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.retry.Do(ctx, func() error {
		_, err := s.pool.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
		return err
	})
}

// Keys lists stored keys in lexical order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.db.QueryContext(ctx, `SELECT key FROM kv_entries ORDER BY key`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
