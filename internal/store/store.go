package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite persistence layer for categorization snapshots.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SchemaVersion is recorded in the metadata table by Migrate.
const SchemaVersion = "1"

// Migrate creates all tables and indexes and records SchemaVersion. It
// refuses a database written with a different schema version. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return errors.Wrap(err, "migrate")
	}
	version, err := s.GetMetadata("schema_version")
	if err != nil {
		return err
	}
	if version != "" && version != SchemaVersion {
		return errors.Newf("migrate: database schema version %s, expected %s", version, SchemaVersion)
	}
	return s.SetMetadata("schema_version", SchemaVersion)
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE,
  categorization  TEXT NOT NULL,
  created_at      TIMESTAMP NOT NULL,
  hash            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
  id              INTEGER PRIMARY KEY,
  snapshot_id     INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  ordinal         INTEGER NOT NULL,
  label           TEXT NOT NULL,
  UNIQUE (snapshot_id, label),
  UNIQUE (snapshot_id, ordinal)
);

CREATE TABLE IF NOT EXISTS category_parents (
  category_id     INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  parent_id       INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  ordinal         INTEGER NOT NULL,
  PRIMARY KEY (category_id, ordinal)
);

CREATE TABLE IF NOT EXISTS properties (
  id              INTEGER PRIMARY KEY,
  category_id     INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  key             TEXT NOT NULL,
  ordinal         INTEGER NOT NULL,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categories_snapshot ON categories(snapshot_id);
CREATE INDEX IF NOT EXISTS idx_category_parents_parent ON category_parents(parent_id);
CREATE INDEX IF NOT EXISTS idx_properties_category ON properties(category_id);
CREATE INDEX IF NOT EXISTS idx_properties_key ON properties(key);
`

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "set metadata %q", key)
	}
	return nil
}

// GetMetadata returns the value for key, or "" if it is not set.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "get metadata %q", key)
	}
	return value, nil
}
