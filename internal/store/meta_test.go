package store_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trknhr/viterbi/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMetaStore_TouchMetaAndNeedsReload(t *testing.T) {
	db := setupTestDB(t)
	meta := store.NewMetaStore(db)

	tmpfile := filepath.Join(t.TempDir(), "weather.yaml")
	if err := os.WriteFile(tmpfile, []byte("states: [a]"), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	key := "model:weather"

	if !meta.NeedsReload(key, tmpfile) {
		t.Fatalf("expected reload for unseen key")
	}

	if err := meta.TouchMeta(key, tmpfile); err != nil {
		t.Fatalf("TouchMeta failed: %v", err)
	}

	if meta.NeedsReload(key, tmpfile) {
		t.Fatalf("expected no reload, but got reload")
	}

	// Simulate file update
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(tmpfile, later, later); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}

	if !meta.NeedsReload(key, tmpfile) {
		t.Fatalf("expected reload, but got no reload")
	}
}

func TestMetaStore_MissingFile(t *testing.T) {
	db := setupTestDB(t)
	meta := store.NewMetaStore(db)

	missing := filepath.Join(t.TempDir(), "gone.yaml")
	if err := meta.TouchMeta("model:gone", missing); err == nil {
		t.Fatalf("expected stat error")
	}
	if !meta.NeedsReload("model:gone", missing) {
		t.Fatalf("missing file should always need reload")
	}
}
