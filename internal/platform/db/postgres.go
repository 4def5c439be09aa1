// Package db owns the PostgreSQL connection pool lifecycle. The pool is
// constructed explicitly at startup and injected into the packages that
// need it; nothing reaches it through package-level state.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open creates and pings a PostgreSQL connection pool. The caller owns the
// pool and must Close it on shutdown.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	// Login lookups are short single-statement reads; a small pool with a
	// bounded acquire wait is enough and surfaces exhaustion as a failed
	// login instead of a hang.
	config.MaxConns = 8
	config.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}

	return pool, nil
}
