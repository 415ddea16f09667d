package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a database from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order against databases whose user_version is below
// their version. schema.sql already carries every change, so each statement
// must be a no-op on a fresh database.
var migrations = []migration{
	{1, "prefab instance lookup index",
		`CREATE INDEX IF NOT EXISTS idx_prefab_instances_prefab ON prefab_instances(prefab_id, seq)`},
}

const currentSchemaVersion = 1

// Store persists compiled manifests, navigation journals and prefab
// instances in SQLite.
type Store struct {
	db *sql.DB
}

type config struct {
	busyTimeout int
	mkdirAll    bool
}

// OpenOption configures Open.
type OpenOption func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 5000.
func WithBusyTimeout(ms int) OpenOption { return func(c *config) { c.busyTimeout = ms } }

// WithMkdirAll creates missing parent directories of the database file.
func WithMkdirAll() OpenOption { return func(c *config) { c.mkdirAll = true } }

// Open creates or opens the database at path, applies pragmas (WAL,
// synchronous NORMAL, busy timeout, foreign keys) and brings the schema up
// to date. Opening the same file repeatedly is safe.
func Open(path string, opts ...OpenOption) (*Store, error) {
	cfg := config{busyTimeout: 5000}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// One connection: sqlite has a single writer, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db, cfg); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func setup(db *sql.DB, cfg config) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("store: connect: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("store: schema: %w", err)
	}
	return migrate(db)
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("store: read user_version: %w", err)
	}
	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("store: migrate to v%d (%s): %w", m.version, m.name, err)
		}
		version = m.version
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("store: set user_version: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// verifyPragma reports an error unless PRAGMA name reads back as expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
