package engine

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trknhr/viterbi/internal/hmm"
	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/metrics"
	"github.com/trknhr/viterbi/internal/modelfile"
	"github.com/trknhr/viterbi/internal/store"
)

// InlineModel names requests that carry their own document without a name.
const InlineModel = "inline"

var ErrNoModel = errors.New("request names no model")

type Request struct {
	Model        string              `json:"model,omitempty"`
	Document     *modelfile.Document `json:"document,omitempty"`
	Observations []string            `json:"observations"`
}

// Response carries the decoded path; positions without a best state are "".
type Response struct {
	Model       string   `json:"model"`
	Path        []string `json:"path"`
	Probability float64  `json:"probability"`
	Degenerate  bool     `json:"degenerate"`
	Unknown     []string `json:"unknown,omitempty"`
}

type compiled struct {
	hash  string
	model *hmm.Model
}

type Engine struct {
	models   store.ModelStore
	runs     store.RunStore
	metrics  *metrics.Metrics
	saveRuns bool

	mu    sync.RWMutex
	cache map[string]compiled
}

// New builds an engine over the model registry. runs and m may be nil.
func New(models store.ModelStore, runs store.RunStore, m *metrics.Metrics, saveRuns bool) *Engine {
	return &Engine{
		models:   models,
		runs:     runs,
		metrics:  m,
		saveRuns: saveRuns && runs != nil,
		cache:    map[string]compiled{},
	}
}

func (e *Engine) Models() store.ModelStore {
	return e.models
}

func (e *Engine) Decode(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	name, m, err := e.resolve(req)
	if err != nil {
		return Response{}, err
	}

	unknown := warnUnknown(name, m, req.Observations)

	started := time.Now()
	res, err := m.Decode(req.Observations)
	e.observe(res, err, len(req.Observations), time.Since(started))
	if err != nil {
		return Response{}, errors.WithMessagef(err, "model %s", name)
	}

	resp := newResponse(name, res, unknown)
	e.record(name, []Response{resp}, [][]string{req.Observations})
	return resp, nil
}

// DecodeBatch decodes every sequence against one model, keeping input order.
func (e *Engine) DecodeBatch(ctx context.Context, req Request, sequences [][]string, workers int) ([]Response, error) {
	name, m, err := e.resolve(req)
	if err != nil {
		return nil, err
	}

	unknown := make([][]string, len(sequences))
	total := 0
	for i, seq := range sequences {
		unknown[i] = warnUnknown(name, m, seq)
		total += len(seq)
	}

	started := time.Now()
	results, err := hmm.DecodeAll(ctx, m, sequences, workers)
	elapsed := time.Since(started)
	if err != nil {
		e.metrics.ObserveDecode(metrics.OutcomeError, total, elapsed)
		return nil, errors.WithMessagef(err, "model %s", name)
	}

	responses := make([]Response, len(results))
	for i, res := range results {
		e.observe(res, nil, len(sequences[i]), elapsed/time.Duration(len(results)))
		responses[i] = newResponse(name, res, unknown[i])
	}
	e.record(name, responses, sequences)
	return responses, nil
}

// Score returns the joint probability of a named state path and the
// observations under the model.
func (e *Engine) Score(ctx context.Context, req Request, path []string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, m, err := e.resolve(req)
	if err != nil {
		return 0, err
	}
	states, err := m.Path(path)
	if err != nil {
		return 0, err
	}
	return m.PathProbability(states, req.Observations)
}

func (e *Engine) resolve(req Request) (string, *hmm.Model, error) {
	doc := req.Document
	name := req.Model
	if doc != nil {
		if doc.Name != "" {
			name = doc.Name
		}
		if name == "" {
			name = InlineModel
		}
	} else {
		if name == "" {
			return "", nil, ErrNoModel
		}
		var err error
		doc, err = e.models.GetModel(name)
		if err != nil {
			return "", nil, err
		}
	}

	m, err := e.compile(name, doc)
	if err != nil {
		return "", nil, err
	}
	return name, m, nil
}

func (e *Engine) compile(name string, doc *modelfile.Document) (*hmm.Model, error) {
	hash, err := store.Fingerprint(doc)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	c, ok := e.cache[name]
	e.mu.RUnlock()
	if ok && c.hash == hash {
		return c.model, nil
	}

	m, err := doc.Model()
	if err != nil {
		return nil, errors.WithMessagef(err, "model %s", name)
	}
	logger.Debug("compiled model %s (%d states, %d symbols)", name, m.NumStates(), len(m.Symbols()))

	e.mu.Lock()
	e.cache[name] = compiled{hash: hash, model: m}
	e.mu.Unlock()
	return m, nil
}

func (e *Engine) observe(res hmm.Result, err error, n int, elapsed time.Duration) {
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case res.Degenerate():
		outcome = metrics.OutcomeDegenerate
	}
	e.metrics.ObserveDecode(outcome, n, elapsed)
}

func (e *Engine) record(name string, responses []Response, sequences [][]string) {
	if !e.saveRuns {
		return
	}
	runs := make([]store.Run, len(responses))
	for i, resp := range responses {
		runs[i] = store.Run{
			Model:        name,
			Observations: sequences[i],
			Path:         resp.Path,
			Probability:  resp.Probability,
			Degenerate:   resp.Degenerate,
		}
	}
	if err := e.runs.SaveRuns(runs); err != nil {
		logger.Error("failed to save %d runs for model %s: %v", len(runs), name, err)
	}
}

func warnUnknown(name string, m *hmm.Model, obs []string) []string {
	unknown := m.UnknownSymbols(obs)
	for _, sym := range unknown {
		logger.WarnOnce(name+"\x00"+sym, "model %s: observation %q is not a known symbol and has zero emission probability", name, sym)
	}
	return unknown
}

func newResponse(name string, res hmm.Result, unknown []string) Response {
	return Response{
		Model:       name,
		Path:        res.Names,
		Probability: res.Probability,
		Degenerate:  res.Degenerate(),
		Unknown:     unknown,
	}
}
