package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

func Migrate(db *sql.DB) error {
	schema := []string{
		// models: registered HMMs, body is the YAML document
		`CREATE TABLE IF NOT EXISTS models (
			name        TEXT PRIMARY KEY,
			hash        TEXT NOT NULL,
			num_states  INTEGER NOT NULL,
			num_symbols INTEGER NOT NULL,
			body        TEXT NOT NULL,
			updated_at  INTEGER NOT NULL
		);`,
		// runs: one row per decoded sequence
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			model        TEXT NOT NULL,
			observations TEXT NOT NULL,
			path         TEXT NOT NULL,
			probability  REAL NOT NULL,
			degenerate   INTEGER NOT NULL DEFAULT 0,
			created_at   INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model);`,
		// meta: last synced mtime of model files
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "failed to run migration statement")
		}
	}

	return nil
}
