// Package storage provides the PostgreSQL storage layer for the GameLens
// dashboard.
//
// It manages a bounded pgxpool connection pool, the insert mappers for each
// telemetry entity, the aggregation queries behind the dashboard's read
// endpoints, and a forward-only migration runner.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool. Every request borrows one connection from the
// pool for its duration; a request that cannot get one queues until a
// connection frees up.
type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a new DB with a bounded connection pool and verifies
// connectivity with a ping.
func New(ctx context.Context, dsn string, minConns, maxConns int32, logger *slog.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse DSN: %w", err)
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping pool: %w", err)
	}

	return &DB{pool: pool, logger: logger}, nil
}

// Pool returns the underlying connection pool for use by other packages.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}
