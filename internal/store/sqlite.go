package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/findash-backend/internal/errs"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS state (
	uid        TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (uid, key)
)`

type sqliteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the state database at path.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sqliteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.NewDatabaseError("open", "failed to open sqlite database", err)
	}
	// a single connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errs.NewDatabaseError("open", "failed to configure sqlite", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errs.NewDatabaseError("migrate", "failed to create state table", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (s *sqliteBackend) Close() error {
	return s.db.Close()
}

func (s *sqliteBackend) Get(ctx context.Context, uid, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM state WHERE uid = ? AND key = ?`, uid, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError(key + " not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get "+key, err)
	}
	return value, nil
}

func (s *sqliteBackend) Put(ctx context.Context, uid, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (uid, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (uid, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		uid, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save "+key, err)
	}
	return nil
}

func (s *sqliteBackend) Delete(ctx context.Context, uid, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE uid = ? AND key = ?`, uid, key); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete "+key, err)
	}
	return nil
}
