package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/levelfeed/internal/config"
)

// Schema is the DDL for the level snapshot audit table.
const Schema = `
CREATE TABLE IF NOT EXISTS level_snapshots (
	snapshot_id UUID             NOT NULL,
	fetched_at  TIMESTAMPTZ      NOT NULL,
	position    INTEGER          NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	label       TEXT             NOT NULL,
	color       CHAR(6)          NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);
CREATE INDEX IF NOT EXISTS level_snapshots_fetched_at_idx ON level_snapshots (fetched_at);
`

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the level_snapshots table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create level_snapshots: %w", err)
	}
	return nil
}
