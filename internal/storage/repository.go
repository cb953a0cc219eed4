// Package storage persists the portfolio in SQLite. Each entity gets
// typed CRUD plus the read projections the status engine and the
// aggregator consume. Deletes cascade through foreign keys, so removing
// a house removes its rooms, tenants, and their payments in one statement.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Aggregating callers treat it as absent rather than failing the rollup.
var ErrNotFound = errors.New("not found")

const timeLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath,
// runs pending migrations, and enforces foreign keys on every connection.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// now returns the canonical stored timestamp for writes issued from Go.
func now() string {
	return time.Now().UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp, tolerating both our layout and the
// RFC 3339 form older rows may carry.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// buildUpdate assembles a partial UPDATE touching only supplied columns.
// Returns an empty clause when nothing was supplied; callers then no-op,
// matching the original field-level update semantics.
func buildUpdate(cols []string, args []any) (string, []any) {
	if len(cols) == 0 {
		return "", nil
	}
	return strings.Join(cols, ", "), args
}

func mapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// WithTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
