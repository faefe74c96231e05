// Package sqlite stores the junction catalogue in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrisdamba/trafficsim/internal/repositories"
	_ "github.com/mattn/go-sqlite3"
)

// DBTX is implemented by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS junctions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    status TEXT NOT NULL,
    congestion TEXT NOT NULL,
    cameras INTEGER NOT NULL,
    vehicle_count INTEGER NOT NULL,
    avg_speed REAL NOT NULL,
    incidents TEXT NOT NULL DEFAULT '[]',
    last_updated DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS feeds (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    junction_id TEXT NOT NULL REFERENCES junctions(id),
    edge_node TEXT NOT NULL,
    online INTEGER NOT NULL,
    cars INTEGER NOT NULL,
    buses INTEGER NOT NULL,
    bikes INTEGER NOT NULL,
    last_tick DATETIME
);
CREATE INDEX IF NOT EXISTS idx_feeds_junction ON feeds(junction_id);
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    kind TEXT NOT NULL,
    junction_id TEXT REFERENCES junctions(id),
    location TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    resolved INTEGER NOT NULL DEFAULT 0,
    assignee TEXT,
    lat REAL,
    lon REAL
);`

// Open opens (creating when missing) the database at path and applies the schema.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path+dsnOptions(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// NewCatalogue returns the repositories over db. Its Replace runs in a
// single transaction.
func NewCatalogue(db *sql.DB) repositories.Catalogue {
	c := newCatalogue(db)
	c.InTx = func(ctx context.Context, fn func(repositories.Catalogue) error) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if err := fn(newCatalogue(tx)); err != nil {
			return err
		}
		return tx.Commit()
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

// withTx runs fn inside a new transaction, or directly when db already is one.
func withTx(ctx context.Context, db DBTX, fn func(DBTX) error) error {
	conn, ok := db.(*sql.DB)
	if !ok {
		return fn(db)
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func dsnOptions(path string) string {
	if strings.Contains(path, "?") {
		return "&_foreign_keys=on"
	}
	return "?_foreign_keys=on"
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
