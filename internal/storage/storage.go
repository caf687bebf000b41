// Package storage keeps the local cache that lets one lma invocation pick up
// where the previous one stopped.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 2

// HomeEnv overrides the data directory.
const HomeEnv = "LMA_HOME"

// BaseDir returns the root data directory (~/.lma, or $LMA_HOME).
func BaseDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".lma"), nil
}

// DBPath returns the cache database location under base.
func DBPath(base string) string {
	return filepath.Join(base, "lma.db")
}

// Store is the SQLite-backed cache.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage error exec %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage error migrating: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for tests.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS sessions (
		position          INTEGER PRIMARY KEY,
		id                INTEGER NOT NULL,
		task              INTEGER NOT NULL,
		started_at        TEXT NOT NULL,
		ended_at          TEXT,
		success           INTEGER NOT NULL DEFAULT 0,
		notes             TEXT NOT NULL DEFAULT '',
		duration_minutes  REAL
	);

	CREATE TABLE IF NOT EXISTS client_state (
		singleton          INTEGER PRIMARY KEY CHECK (singleton = 1),
		active_session_id  INTEGER,
		active_block_id    INTEGER,
		pause_task_id      INTEGER,
		paused_at          TEXT,
		pause_total        INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS completed_blocks (
		block_id  INTEGER PRIMARY KEY,
		minutes   REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key    TEXT PRIMARY KEY,
		value  TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("migrate v1: %w", err)
	}
	return nil
}

func (s *Store) migrateV2() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS blocks (
		id          INTEGER PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		task        INTEGER,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_blocks_start ON blocks(start_date);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("migrate v2: %w", err)
	}
	return nil
}

// Setting returns a stored value and whether it exists.
func (s *Store) Setting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a value, replacing any previous one.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage error writing setting %q: %w", key, err)
	}
	return nil
}
