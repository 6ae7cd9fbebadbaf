// Package store persists the budget state as JSON values in a small
// key-value table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrConflict is returned by PutAll when another writer saved since the
// revision the caller last saw.
var ErrConflict = errors.New("state changed by another writer")

// KV is the key-value contract the budget state is saved through.
//
// Several processes may share one store. Each save names the revision it
// was based on; a save against a stale revision writes nothing.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Revision returns the store's write counter.
	Revision(ctx context.Context) (int64, error)
	// PutAll writes every entry as one unit if the store is still at rev
	// and returns the new revision. Otherwise it returns ErrConflict.
	PutAll(ctx context.Context, rev int64, entries map[string]string) (int64, error)
}

// SQLite is a KV backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Revision returns the current write counter.
func (s *SQLite) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE name = 'revision'").Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	return rev, nil
}

// PutAll bumps the revision from rev and upserts every entry in a single
// transaction. The bump is the transaction's first write, so a concurrent
// writer either waits on the lock or sees the new revision.
func (s *SQLite) PutAll(ctx context.Context, rev int64, entries map[string]string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE meta SET value = value + 1 WHERE name = 'revision' AND value = ?", rev)
	if err != nil {
		return 0, fmt.Errorf("bumping revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrConflict
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range entries {
		if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
			return 0, fmt.Errorf("writing %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rev + 1, nil
}
