package worker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/modelfile"
	"github.com/trknhr/viterbi/internal/store"
)

// MetaTracker remembers file mtimes between syncs. *store.MetaStore
// implements it.
type MetaTracker interface {
	TouchMeta(key, path string) error
	NeedsReload(key, path string) bool
}

// ModelSyncWorker imports one model file into the registry.
type ModelSyncWorker struct {
	models store.ModelStore
	meta   MetaTracker
	path   string
}

func NewModelSyncWorker(models store.ModelStore, meta MetaTracker, path string) *ModelSyncWorker {
	return &ModelSyncWorker{models: models, meta: meta, path: path}
}

func (m *ModelSyncWorker) Key() string  { return "model:" + m.path }
func (m *ModelSyncWorker) Path() string { return m.path }
func (m *ModelSyncWorker) NeedsReload() bool {
	return m.meta.NeedsReload(m.Key(), m.path)
}

func (m *ModelSyncWorker) Sync() error {
	doc, err := modelfile.Load(m.path)
	if err != nil {
		return err
	}
	if err := m.models.SaveModel(doc); err != nil {
		return err
	}
	if err := m.meta.TouchMeta(m.Key(), m.path); err != nil {
		return err
	}
	logger.Debug("synced model %s from %s", doc.Name, m.path)
	return nil
}

// NewModelSyncWorkers returns one worker per model file directly inside dir,
// in file name order. Files with unrecognised extensions are ignored.
func NewModelSyncWorkers(dir string, models store.ModelStore, meta MetaTracker) ([]SyncWorker, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read model directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := modelfile.FormatFromPath(e.Name()); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	workers := make([]SyncWorker, 0, len(names))
	for _, name := range names {
		workers = append(workers, NewModelSyncWorker(models, meta, filepath.Join(dir, name)))
	}
	return workers, nil
}
