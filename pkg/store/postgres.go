package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL-backed Store used by the service.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to PostgreSQL, verifies connectivity, and runs
// migrations. The returned store is safe for concurrent use.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// migrate creates the schema if it does not exist.
func (s *PGStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS deliberations (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id              TEXT PRIMARY KEY,
			deliberation_id TEXT NOT NULL REFERENCES deliberations(id) ON DELETE CASCADE,
			title           TEXT NOT NULL,
			category        TEXT NOT NULL,
			saved_x         DOUBLE PRECISION,
			saved_y         DOUBLE PRECISION,
			embedding       REAL[],
			parent_id       TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS nodes_deliberation_idx ON nodes(deliberation_id)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			id              TEXT PRIMARY KEY,
			deliberation_id TEXT NOT NULL REFERENCES deliberations(id) ON DELETE CASCADE,
			source_id       TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			target_id       TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			kind            TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS relationships_deliberation_idx ON relationships(deliberation_id)`,
		`CREATE TABLE IF NOT EXISTS layout_snapshots (
			deliberation_id TEXT PRIMARY KEY REFERENCES deliberations(id) ON DELETE CASCADE,
			data            BYTEA NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
