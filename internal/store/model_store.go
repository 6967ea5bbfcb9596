package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trknhr/viterbi/internal/modelfile"
)

var (
	ErrModelNotFound     = errors.New("model not found")
	ErrModelNameRequired = errors.New("model name is required")
)

type ModelInfo struct {
	Name       string
	Hash       string
	NumStates  int
	NumSymbols int
	UpdatedAt  time.Time
}

//go:generate mockgen -destination=mock_store.go -package=store . ModelStore,RunStore

type ModelStore interface {
	SaveModel(doc *modelfile.Document) error
	GetModel(name string) (*modelfile.Document, error)
	ListModels() ([]ModelInfo, error)
	DeleteModel(name string) error
}

type SQLModelStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLModelStore(db *sql.DB) ModelStore {
	return &SQLModelStore{db: db, now: time.Now}
}

// Fingerprint is the sha256 of the document's YAML encoding.
func Fingerprint(doc *modelfile.Document) (string, error) {
	body, err := yaml.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encode model")
	}
	return hash(body), nil
}

func hash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func (s *SQLModelStore) SaveModel(doc *modelfile.Document) error {
	if doc == nil || doc.Name == "" {
		return ErrModelNameRequired
	}
	m, err := doc.Model()
	if err != nil {
		return errors.Wrapf(err, "model %q", doc.Name)
	}
	body, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode model")
	}

	_, err = s.db.Exec(`
		INSERT INTO models (name, hash, num_states, num_symbols, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			hash = excluded.hash,
			num_states = excluded.num_states,
			num_symbols = excluded.num_symbols,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		doc.Name, hash(body), m.NumStates(), len(m.Symbols()), string(body), s.now().Unix())
	if err != nil {
		return errors.Wrapf(err, "save model %q", doc.Name)
	}
	return nil
}

func (s *SQLModelStore) GetModel(name string) (*modelfile.Document, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM models WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrModelNotFound, "%q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get model %q", name)
	}

	var doc modelfile.Document
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, errors.Wrapf(err, "decode model %q", name)
	}
	return &doc, nil
}

func (s *SQLModelStore) ListModels() ([]ModelInfo, error) {
	rows, err := s.db.Query(`
		SELECT name, hash, num_states, num_symbols, updated_at
		FROM models ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}
	defer rows.Close()

	var infos []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var updated int64
		if err := rows.Scan(&info.Name, &info.Hash, &info.NumStates, &info.NumSymbols, &updated); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.Unix(updated, 0)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *SQLModelStore) DeleteModel(name string) error {
	res, err := s.db.Exec(`DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "delete model %q", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrModelNotFound, "%q", name)
	}
	return nil
}
