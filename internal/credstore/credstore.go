// ABOUTME: SQLite-backed key-value store for the persisted credential token.
// ABOUTME: Schema is created on open; values are addressed by a fixed name.

package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists small named values, primarily the auth token, across
// process restarts.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the store at path. Parent directories are
// created if needed and the schema is applied on open.
func Open(path string) (*Store, error) {
	logger := slog.Default().With("component", "credstore")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("credential store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Get returns the value stored under name, or "" when none exists.
func (s *Store) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading credential: %w", err)
	}
	return value, nil
}

// Put stores value under name, replacing any previous value.
func (s *Store) Put(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	return nil
}

// Delete removes the value stored under name. Deleting a missing name is
// a no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
