package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trknhr/viterbi/internal/engine"
	"github.com/trknhr/viterbi/internal/hmm"
	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/metrics"
	"github.com/trknhr/viterbi/internal/modelfile"
	"github.com/trknhr/viterbi/internal/store"
)

// maxBodyBytes bounds request bodies; models and sequences are small.
const maxBodyBytes = 8 << 20

type Server struct {
	engine  *engine.Engine
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

func New(e *engine.Engine, m *metrics.Metrics) *Server {
	s := &Server{engine: e, metrics: m, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /decode", s.handleDecode)
	s.mux.HandleFunc("POST /decode/batch", s.handleBatch)
	s.mux.HandleFunc("POST /score", s.handleScore)
	s.mux.HandleFunc("GET /models", s.handleListModels)
	s.mux.HandleFunc("POST /models", s.handlePutModel)
	s.mux.HandleFunc("GET /models/{name}", s.handleGetModel)
	s.mux.HandleFunc("DELETE /models/{name}", s.handleDeleteModel)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		s.mux.Handle("GET /metrics", m.Handler())
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	s.mux.ServeHTTP(w, r)
	logger.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(started))
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type batchRequest struct {
	Model     string              `json:"model,omitempty"`
	Document  *modelfile.Document `json:"document,omitempty"`
	Sequences [][]string          `json:"sequences"`
	Workers   int                 `json:"workers,omitempty"`
}

type scoreRequest struct {
	engine.Request
	Path []string `json:"path"`
}

type scoreResponse struct {
	Model       string  `json:"model"`
	Probability float64 `json:"probability"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.engine.Decode(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !readJSON(w, r, &req) {
		return
	}
	resps, err := s.engine.DecodeBatch(r.Context(), engine.Request{Model: req.Model, Document: req.Document}, req.Sequences, req.Workers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resps)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !readJSON(w, r, &req) {
		return
	}
	p, err := s.engine.Score(r.Context(), req.Request, req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	name := req.Model
	if req.Document != nil && req.Document.Name != "" {
		name = req.Document.Name
	}
	writeJSON(w, http.StatusOK, scoreResponse{Model: name, Probability: p})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	infos, err := s.engine.Models().ListModels()
	if err != nil {
		writeError(w, err)
		return
	}
	type item struct {
		Name       string    `json:"name"`
		Hash       string    `json:"hash"`
		NumStates  int       `json:"num_states"`
		NumSymbols int       `json:"num_symbols"`
		UpdatedAt  time.Time `json:"updated_at"`
	}
	items := make([]item, 0, len(infos))
	for _, info := range infos {
		items = append(items, item(info))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	doc, err := s.engine.Models().GetModel(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutModel(w http.ResponseWriter, r *http.Request) {
	var doc modelfile.Document
	if !readJSON(w, r, &doc) {
		return
	}
	if err := s.engine.Models().SaveModel(&doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": doc.Name})
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Models().DeleteModel(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, hmm.ErrMissingModelEntry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrNoModel),
		errors.Is(err, store.ErrModelNameRequired),
		errors.Is(err, hmm.ErrEmptyObservations),
		errors.Is(err, hmm.ErrNoStates),
		errors.Is(err, hmm.ErrEmptyStateName),
		errors.Is(err, hmm.ErrDuplicateState),
		errors.Is(err, hmm.ErrUnknownState),
		errors.Is(err, hmm.ErrPathLength):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write response: %v", err)
	}
}
