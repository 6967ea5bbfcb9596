package engine_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trknhr/viterbi/internal/engine"
	"github.com/trknhr/viterbi/internal/hmm"
	"github.com/trknhr/viterbi/internal/metrics"
	"github.com/trknhr/viterbi/internal/modelfile"
	"github.com/trknhr/viterbi/internal/store"
)

func weatherDoc() *modelfile.Document {
	return &modelfile.Document{
		Name:   "weather",
		States: []string{"rainy", "sunny"},
		Start:  map[string]float64{"rainy": 0.6, "sunny": 0.4},
		Transitions: map[string]map[string]float64{
			"rainy": {"rainy": 0.7, "sunny": 0.3},
			"sunny": {"rainy": 0.4, "sunny": 0.6},
		},
		Emissions: map[string]map[string]float64{
			"rainy": {"walk": 0.1, "shop": 0.4},
			"sunny": {"walk": 0.6, "shop": 0.3},
		},
	}
}

func TestEngine_DecodeFromRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	models := store.NewMockModelStore(ctrl)
	runs := store.NewMockRunStore(ctrl)
	m := metrics.New()

	models.EXPECT().GetModel("weather").Return(weatherDoc(), nil).Times(2)
	runs.EXPECT().
		SaveRuns(gomock.Any()).
		DoAndReturn(func(rs []store.Run) error {
			require.Len(t, rs, 1)
			assert.Equal(t, "weather", rs[0].Model)
			assert.Equal(t, []string{"walk", "shop", "walk"}, rs[0].Observations)
			return nil
		}).
		Times(2)

	e := engine.New(models, runs, m, true)
	for i := 0; i < 2; i++ {
		resp, err := e.Decode(context.Background(), engine.Request{
			Model:        "weather",
			Observations: []string{"walk", "shop", "walk"},
		})
		require.NoError(t, err)
		assert.Equal(t, "weather", resp.Model)
		assert.Equal(t, []string{"sunny", "sunny", "sunny"}, resp.Path)
		assert.InDelta(t, 0.015552, resp.Probability, 1e-12)
		assert.False(t, resp.Degenerate)
		assert.Empty(t, resp.Unknown)
	}

	assert.Equal(t, 2.0, counter(t, m, metrics.OutcomeOK))
}

func counter(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "viterbi_decodes_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestEngine_DecodeInlineDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// the registry is never consulted for inline documents
	models := store.NewMockModelStore(ctrl)
	e := engine.New(models, nil, nil, true)

	doc := weatherDoc()
	doc.Name = ""
	resp, err := e.Decode(context.Background(), engine.Request{
		Model:        "ignored-when-empty",
		Document:     doc,
		Observations: []string{"fly", "fly"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ignored-when-empty", resp.Model)
	assert.True(t, resp.Degenerate)
	assert.Equal(t, []string{"", ""}, resp.Path)
	assert.Equal(t, 0.0, resp.Probability)
	assert.Equal(t, []string{"fly"}, resp.Unknown)

	resp, err = e.Decode(context.Background(), engine.Request{Document: doc, Observations: []string{"walk"}})
	require.NoError(t, err)
	assert.Equal(t, engine.InlineModel, resp.Model)
	assert.Equal(t, []string{"sunny"}, resp.Path)
}

func TestEngine_DecodeErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	models := store.NewMockModelStore(ctrl)
	models.EXPECT().GetModel("nope").Return(nil, store.ErrModelNotFound)
	m := metrics.New()
	e := engine.New(models, nil, m, false)
	ctx := context.Background()

	_, err := e.Decode(ctx, engine.Request{Observations: []string{"walk"}})
	assert.True(t, errors.Is(err, engine.ErrNoModel))

	_, err = e.Decode(ctx, engine.Request{Model: "nope", Observations: []string{"walk"}})
	assert.True(t, errors.Is(err, store.ErrModelNotFound))

	doc := weatherDoc()
	_, err = e.Decode(ctx, engine.Request{Document: doc})
	assert.True(t, errors.Is(err, hmm.ErrEmptyObservations))

	delete(doc.Transitions, "sunny")
	_, err = e.Decode(ctx, engine.Request{Document: doc, Observations: []string{"walk", "walk"}})
	assert.True(t, errors.Is(err, hmm.ErrMissingModelEntry))

	assert.Equal(t, 2.0, counter(t, m, metrics.OutcomeError))
}

func TestEngine_CacheFollowsDocumentChanges(t *testing.T) {
	e := engine.New(nil, nil, nil, false)
	ctx := context.Background()

	doc := weatherDoc()
	resp, err := e.Decode(ctx, engine.Request{Document: doc, Observations: []string{"shop"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"rainy"}, resp.Path)

	doc.Emissions["sunny"]["shop"] = 0.9
	resp, err = e.Decode(ctx, engine.Request{Document: doc, Observations: []string{"shop"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sunny"}, resp.Path)
}

func TestEngine_DecodeBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runs := store.NewMockRunStore(ctrl)
	runs.EXPECT().
		SaveRuns(gomock.Any()).
		DoAndReturn(func(rs []store.Run) error {
			require.Len(t, rs, 3)
			assert.True(t, rs[2].Degenerate)
			return nil
		})
	m := metrics.New()
	e := engine.New(nil, runs, m, true)

	seqs := [][]string{{"walk", "shop", "walk"}, {"shop"}, {"fly"}}
	resps, err := e.DecodeBatch(context.Background(), engine.Request{Document: weatherDoc()}, seqs, 2)
	require.NoError(t, err)
	require.Len(t, resps, 3)

	assert.Equal(t, []string{"sunny", "sunny", "sunny"}, resps[0].Path)
	assert.Equal(t, []string{"rainy"}, resps[1].Path)
	assert.True(t, resps[2].Degenerate)
	assert.Equal(t, []string{"fly"}, resps[2].Unknown)

	assert.Equal(t, 2.0, counter(t, m, metrics.OutcomeOK))
	assert.Equal(t, 1.0, counter(t, m, metrics.OutcomeDegenerate))
}

func TestEngine_Score(t *testing.T) {
	e := engine.New(nil, nil, nil, false)
	req := engine.Request{Document: weatherDoc(), Observations: []string{"walk", "shop", "walk"}}

	p, err := e.Score(context.Background(), req, []string{"sunny", "sunny", "sunny"})
	require.NoError(t, err)
	assert.InDelta(t, 0.015552, p, 1e-12)

	_, err = e.Score(context.Background(), req, []string{"sunny", "foggy", "sunny"})
	assert.True(t, errors.Is(err, hmm.ErrUnknownState))
}

func TestEngine_CancelledContext(t *testing.T) {
	e := engine.New(nil, nil, nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Decode(ctx, engine.Request{Document: weatherDoc(), Observations: []string{"walk"}})
	assert.ErrorIs(t, err, context.Canceled)
}
