package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is implemented by both *pgxpool.Pool and pgx.Tx. Begin on a pgx.Tx
// opens a savepoint.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schema = `
CREATE TABLE IF NOT EXISTS junctions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lon DOUBLE PRECISION NOT NULL,
    status TEXT NOT NULL,
    congestion TEXT NOT NULL,
    cameras INTEGER NOT NULL,
    vehicle_count INTEGER NOT NULL,
    avg_speed DOUBLE PRECISION NOT NULL,
    incidents TEXT[] NOT NULL DEFAULT '{}',
    last_updated TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS feeds (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    junction_id TEXT NOT NULL REFERENCES junctions(id),
    edge_node TEXT NOT NULL,
    online BOOLEAN NOT NULL,
    cars INTEGER NOT NULL,
    buses INTEGER NOT NULL,
    bikes INTEGER NOT NULL,
    last_tick TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    kind TEXT NOT NULL,
    junction_id TEXT REFERENCES junctions(id),
    location TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    resolved BOOLEAN NOT NULL DEFAULT FALSE,
    assignee TEXT,
    lat DOUBLE PRECISION,
    lon DOUBLE PRECISION
);`

// Connect opens a pool for config and makes sure the catalogue tables exist.
func Connect(ctx context.Context, config *models.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating catalogue tables: %w", err)
	}
	return pool, nil
}

// NewCatalogue returns the repositories over pool. Its Replace runs in a
// single transaction.
func NewCatalogue(pool *pgxpool.Pool) repositories.Catalogue {
	c := newCatalogue(pool)
	c.InTx = func(ctx context.Context, fn func(repositories.Catalogue) error) error {
		return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			return fn(newCatalogue(tx))
		})
	}
	return c
}

func newCatalogue(db DBTX) repositories.Catalogue {
	return repositories.Catalogue{
		Junctions: NewJunctionRepository(db),
		Feeds:     NewFeedRepository(db),
		Alerts:    NewAlertRepository(db),
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
