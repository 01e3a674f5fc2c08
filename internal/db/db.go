package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/diary/internal/errors"
	_ "modernc.org/sqlite"
)

// Open opens the SQLite file at path and ensures the entries table exists.
// Each call yields an independent handle holding at most one connection;
// callers open one per operation and close it when done.
func Open(path string) (*sql.DB, error) {
	// Create parent directory with restricted permissions
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.NewStorageUnavailable("open", fmt.Errorf("failed to create directory: %w", err))
		}
	}

	// Pragmas in the connection string apply to every connection
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewStorageUnavailable("open", err)
	}
	db.SetMaxOpenConns(1)

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, errors.NewStorageUnavailable("open", err)
	}

	// Creates the file if it doesn't exist
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(path, 0600)

	return db, nil
}

// EnsureSchema creates the entries table when absent.
// The implicit rowid is the record id; there is no schema versioning.
func EnsureSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
		  title    TEXT,
		  text     TEXT,
		  mood     INTEGER,
		  symptoms TEXT,
		  date     TEXT
		)
	`
	if _, err := db.Exec(schema); err != nil {
		return errors.NewStorageUnavailable("ensure schema", err)
	}
	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}
