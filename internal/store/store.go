package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - progress table with UNIQUE(user_id, problem_id)
const currentSchemaVersion = 1

// timeLayout is ISO-8601 UTC with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Engine is the in-memory SQLite database. Only the Manager creates engines.
type Engine struct {
	db *sql.DB
}

// openEngine creates an empty in-memory database.
//
// An in-memory database lives and dies with its connection, so the pool is
// pinned to exactly one connection that never expires.
func openEngine(ctx context.Context) (*Engine, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to engine: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Engine{db: db}, nil
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer Repository methods.
func (e *Engine) DB() *sql.DB {
	return e.db
}

// Close closes the engine. Anything not yet saved is lost.
func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables and indexes if they don't exist and stamps the
// schema version. Idempotent.
func (e *Engine) applySchema(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := e.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// schemaVersion reads PRAGMA user_version.
func (e *Engine) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := e.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// checkVersion rejects images written by a newer build.
func (e *Engine) checkVersion(ctx context.Context) error {
	version, err := e.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("image schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	return nil
}
