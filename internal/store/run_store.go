package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trknhr/viterbi/internal/logger"
)

// Run is one decoded sequence. Path holds "" where no state was chosen.
type Run struct {
	ID           int64     `json:"id"`
	Model        string    `json:"model"`
	Observations []string  `json:"observations"`
	Path         []string  `json:"path"`
	Probability  float64   `json:"probability"`
	Degenerate   bool      `json:"degenerate"`
	CreatedAt    time.Time `json:"created_at"`
}

type RunStore interface {
	SaveRuns(runs []Run) error
	ListRuns(model string, limit int) ([]Run, error)
}

type SQLRunStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLRunStore(db *sql.DB) RunStore {
	return &SQLRunStore{db: db, now: time.Now}
}

func (s *SQLRunStore) SaveRuns(runs []Run) error {
	if len(runs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO runs(model, observations, path, probability, degenerate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.now().Unix()
	for _, r := range runs {
		created := now
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Unix()
		}
		degenerate := 0
		if r.Degenerate {
			degenerate = 1
		}
		obs, err := encodeTokens(r.Observations)
		if err != nil {
			return errors.Wrap(err, "encode observations")
		}
		path, err := encodeTokens(r.Path)
		if err != nil {
			return errors.Wrap(err, "encode path")
		}
		if _, err := stmt.Exec(r.Model, obs, path, r.Probability, degenerate, created); err != nil {
			logger.Error("failed to insert run for model %s: %v", r.Model, err)
		}
	}
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit runs tx: %v", err)
		return errors.Wrap(err, "commit runs")
	}
	return nil
}

// ListRuns returns the newest runs first. An empty model lists every model;
// a non-positive limit means no limit.
func (s *SQLRunStore) ListRuns(model string, limit int) ([]Run, error) {
	query := `SELECT id, model, observations, path, probability, degenerate, created_at FROM runs`
	var args []any
	if model != "" {
		query += ` WHERE model = ?`
		args = append(args, model)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var obs, path string
		var degenerate, created int64
		if err := rows.Scan(&r.ID, &r.Model, &obs, &path, &r.Probability, &degenerate, &created); err != nil {
			return nil, err
		}
		if r.Observations, err = decodeTokens(obs); err != nil {
			return nil, errors.Wrapf(err, "run %d observations", r.ID)
		}
		if r.Path, err = decodeTokens(path); err != nil {
			return nil, errors.Wrapf(err, "run %d path", r.ID)
		}
		r.Degenerate = degenerate != 0
		r.CreatedAt = time.Unix(created, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func encodeTokens(tokens []string) (string, error) {
	if tokens == nil {
		tokens = []string{}
	}
	b, err := json.Marshal(tokens)
	return string(b), err
}

func decodeTokens(s string) ([]string, error) {
	var tokens []string
	err := json.Unmarshal([]byte(s), &tokens)
	return tokens, err
}
