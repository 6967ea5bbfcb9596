package store

import (
	"database/sql"
	"os"

	"github.com/pkg/errors"
)

type MetaStore struct {
	db *sql.DB
}

func NewMetaStore(db *sql.DB) *MetaStore {
	return &MetaStore{db: db}
}

// TouchMeta records the current mtime of filePath under key.
func (m *MetaStore) TouchMeta(key string, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return errors.Wrapf(err, "stat error for %s", filePath)
	}

	_, err = m.db.Exec(`
		INSERT INTO meta (key, path, mtime)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			path = excluded.path,
			mtime = excluded.mtime
	`, key, filePath, info.ModTime().UnixNano())
	if err != nil {
		return errors.Wrap(err, "failed to update meta")
	}
	return nil
}

// NeedsReload reports whether filePath changed since the last TouchMeta.
// Missing files and unknown keys always need a reload.
func (m *MetaStore) NeedsReload(key string, filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return true
	}

	var storedPath string
	var storedMtime int64
	err = m.db.QueryRow(`SELECT path, mtime FROM meta WHERE key = ?`, key).Scan(&storedPath, &storedMtime)
	if err != nil {
		return true
	}

	return storedPath != filePath || info.ModTime().UnixNano() > storedMtime
}
