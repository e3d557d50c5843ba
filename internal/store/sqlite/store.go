// Package sqlite implements the review store (store C) on embedded SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Config holds SQLite settings.
type Config struct {
	Path string
}

// Store provides SQLite-backed persistence for reviews.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the SQLite store at the given path (":memory:" for tests).
// It configures WAL mode, sets pragmas, and applies the schema. The embedded
// store is single-writer, so the connection pool is capped at one connection;
// concurrent requests serialize on it.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := store.ConnectWithRetry(ctx, logger, "sqlite", db.PingContext); err != nil {
		db.Close()
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply reviews schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
