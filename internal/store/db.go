package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/trknhr/viterbi/internal/logger"
)

// Open opens (creating if needed) the libsql database at path and migrates it.
// ":memory:" opens a private in-memory database.
func Open(path string) (*sql.DB, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
		dsn = "file:" + path
	}
	logger.Debug("dbPath: %s", path)

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if dsn == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// DefaultPath is viterbi/viterbi.db under the user cache directory.
func DefaultPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "viterbi", "viterbi.db")
}
