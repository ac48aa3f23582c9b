package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of all schema migrations. Version 1 is the
// flat blob catalog; version 2 introduces the bundle hierarchy.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: blobs table and lookup indexes",
		SQL: `
CREATE TABLE IF NOT EXISTS blobs (
  id TEXT PRIMARY KEY,
  location TEXT NOT NULL,
  checksum TEXT NOT NULL,
  size INTEGER NOT NULL DEFAULT 0,
  name TEXT,
  description TEXT,
  mime_type TEXT,
  project_id TEXT,
  dataset_id TEXT,
  data_type TEXT,
  public INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_blobs_checksum ON blobs(checksum);
CREATE INDEX IF NOT EXISTS idx_blobs_location ON blobs(location);
CREATE INDEX IF NOT EXISTS idx_blobs_name ON blobs(name);
`,
	},
	{
		Version:     2,
		Description: "bundle hierarchy: bundles table and blob parent reference",
		SQL: `
CREATE TABLE IF NOT EXISTS bundles (
  id TEXT PRIMARY KEY,
  name TEXT,
  description TEXT,
  checksum TEXT NOT NULL DEFAULT '',
  size INTEGER NOT NULL DEFAULT 0,
  project_id TEXT,
  dataset_id TEXT,
  data_type TEXT,
  public INTEGER NOT NULL DEFAULT 0,
  parent_id TEXT REFERENCES bundles(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL
);

ALTER TABLE blobs ADD COLUMN bundle_id TEXT REFERENCES bundles(id) ON DELETE CASCADE;

CREATE INDEX IF NOT EXISTS idx_bundles_parent ON bundles(parent_id);
CREATE INDEX IF NOT EXISTS idx_blobs_bundle ON blobs(bundle_id);
`,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(migrationsTableSQL)
	return err
}

func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigrations applies all pending migrations in order, each inside its own
// transaction.
func runMigrations(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if m.Version > applied {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
			m.Version,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
