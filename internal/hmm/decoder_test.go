package hmm_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trknhr/viterbi/internal/hmm"
)

func weatherSpec() hmm.Spec {
	return hmm.Spec{
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

func TestDecode_Weather(t *testing.T) {
	spec := weatherSpec()
	r, err := hmm.Decode([]string{"walk", "shop", "walk"}, spec.States, spec.Start, spec.Transitions, spec.Emissions)
	require.NoError(t, err)

	assert.Equal(t, []string{"sunny", "sunny", "sunny"}, r.Names)
	assert.InDelta(t, 0.015552, r.Probability, 1e-6)
	assert.False(t, r.Degenerate())
}

func TestDecode_DominantSelfTransition(t *testing.T) {
	uniform := map[string]float64{"s1": 0.2, "s2": 0.2, "s3": 0.2, "s4": 0.2, "s5": 0.2}
	flat := map[string]float64{"obs_a": 0.3, "obs_b": 0.3, "obs_c": 0.4}
	states := []string{"s1", "s2", "s3", "s4", "s5"}
	observations := []string{"obs_a", "obs_b", "obs_b", "obs_a", "obs_c", "obs_c", "obs_a", "obs_b", "obs_c", "obs_a"}

	r, err := hmm.Decode(observations, states,
		map[string]float64{"s1": 0.05, "s2": 0.05, "s3": 0.8, "s4": 0.05, "s5": 0.05},
		map[string]map[string]float64{
			"s1": uniform,
			"s2": uniform,
			"s3": {"s1": 0.05, "s2": 0.05, "s3": 0.8, "s4": 0.05, "s5": 0.05},
			"s4": uniform,
			"s5": uniform,
		},
		map[string]map[string]float64{
			"s1": flat,
			"s2": flat,
			"s3": {"obs_a": 0.5, "obs_b": 0.4, "obs_c": 0.1},
			"s4": flat,
			"s5": flat,
		},
	)
	require.NoError(t, err)

	want := make([]string, len(observations))
	for i := range want {
		want[i] = "s3"
	}
	assert.Equal(t, want, r.Names)
	assert.InDelta(t, 4.294967296e-07, r.Probability, 1e-12)
}

func TestDecode_SingleState(t *testing.T) {
	m, err := hmm.NewModel(hmm.Spec{
		States:      []string{"only"},
		Start:       map[string]float64{"only": 0.9},
		Transitions: map[string]map[string]float64{"only": {"only": 1}},
		Emissions:   map[string]map[string]float64{"only": {"a": 0.5, "b": 0.25}},
	})
	require.NoError(t, err)

	obs := []string{"a", "b", "b", "a"}
	r, err := m.Decode(obs)
	require.NoError(t, err)

	assert.Equal(t, []string{"only", "only", "only", "only"}, r.Names)
	assert.InDelta(t, 0.9*0.5*0.25*0.25*0.5, r.Probability, 1e-15)
}

func TestDecode_TieBreakKeepsEarliestState(t *testing.T) {
	half := map[string]float64{"a": 0.5, "b": 0.5}
	spec := hmm.Spec{
		Start:       half,
		Transitions: map[string]map[string]float64{"a": half, "b": half},
		Emissions:   map[string]map[string]float64{"a": {"x": 1}, "b": {"x": 1}},
	}

	tests := []struct {
		order []string
		want  []string
	}{
		{[]string{"a", "b"}, []string{"a", "a"}},
		{[]string{"b", "a"}, []string{"b", "b"}},
	}
	for _, tt := range tests {
		spec.States = tt.order
		m, err := hmm.NewModel(spec)
		require.NoError(t, err)

		r, err := m.Decode([]string{"x", "x"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.Names, "state order %v", tt.order)
		assert.Equal(t, 0.25, r.Probability)
	}
}

func TestTrellis_UnreachableState(t *testing.T) {
	into := map[string]float64{"a": 0.5, "b": 0.5, "c": 0}
	m, err := hmm.NewModel(hmm.Spec{
		States:      []string{"a", "b", "c"},
		Start:       map[string]float64{"a": 1, "b": 0, "c": 0},
		Transitions: map[string]map[string]float64{"a": into, "b": into, "c": into},
		Emissions: map[string]map[string]float64{
			"a": {"x": 1}, "b": {"x": 1}, "c": {"x": 1},
		},
	})
	require.NoError(t, err)

	obs := []string{"x", "x", "x"}
	tr, err := m.Trellis(obs)
	require.NoError(t, err)
	require.Equal(t, len(obs), tr.Len())

	c, _ := m.StateIndex("c")
	for step := 1; step < tr.Len(); step++ {
		assert.Equal(t, 0.0, tr.Prob(step, c), "dp[%d][c]", step)
		assert.Equal(t, hmm.NoState, tr.Backpointer(step, c), "bp[%d][c]", step)
		assert.Len(t, tr.Column(step), 3)
	}

	r := tr.BestPath()
	assert.NotContains(t, r.Names, "c")
	assert.Equal(t, []string{"a", "a", "a"}, r.Names)
	assert.Equal(t, 0.25, r.Probability)
}

func TestTrellis_FirstColumnHasNoPredecessors(t *testing.T) {
	m, err := hmm.NewModel(weatherSpec())
	require.NoError(t, err)

	tr, err := m.Trellis([]string{"walk", "shop"})
	require.NoError(t, err)

	for s := 0; s < m.NumStates(); s++ {
		assert.Equal(t, hmm.NoState, tr.Backpointer(0, hmm.State(s)))
	}
	assert.InDelta(t, 0.06, tr.Prob(0, 0), 1e-15)
	assert.InDelta(t, 0.24, tr.Prob(0, 1), 1e-15)
	sunny, _ := m.StateIndex("sunny")
	assert.Equal(t, sunny, tr.Backpointer(1, 0))
}

func TestDecode_DegenerateWhenNothingExplainsObservations(t *testing.T) {
	m, err := hmm.NewModel(weatherSpec())
	require.NoError(t, err)

	tests := []struct {
		name string
		obs  []string
	}{
		{"single unknown symbol", []string{"fly"}},
		{"unknown symbol at the end", []string{"walk", "shop", "fly"}},
		{"unknown symbol first", []string{"fly", "walk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := m.Decode(tt.obs)
			require.NoError(t, err)

			assert.True(t, r.Degenerate())
			assert.Equal(t, 0.0, r.Probability)
			require.Len(t, r.Path, len(tt.obs))
			assert.Equal(t, hmm.NoState, r.Path[len(r.Path)-1])
			assert.Equal(t, "", r.Names[len(r.Names)-1])
		})
	}
}

func TestDecode_MissingEntries(t *testing.T) {
	spec := weatherSpec()
	delete(spec.Start, "sunny")

	_, err := hmm.NewModel(spec)
	require.NoError(t, err, "missing entries only fail when looked up")

	_, err = hmm.Decode([]string{"walk"}, spec.States, spec.Start, spec.Transitions, spec.Emissions)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hmm.ErrMissingModelEntry))
	assert.Contains(t, err.Error(), "start[sunny]")

	spec = weatherSpec()
	spec.Transitions["sunny"] = map[string]float64{"sunny": 0.6}

	// a single observation never consults transitions
	r, err := hmm.Decode([]string{"walk"}, spec.States, spec.Start, spec.Transitions, spec.Emissions)
	require.NoError(t, err)
	assert.Equal(t, []string{"sunny"}, r.Names)

	_, err = hmm.Decode([]string{"walk", "walk"}, spec.States, spec.Start, spec.Transitions, spec.Emissions)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hmm.ErrMissingModelEntry))
	assert.Contains(t, err.Error(), "transition[sunny][rainy]")
}

func TestDecode_MissingEmissionRowEmitsNothing(t *testing.T) {
	spec := weatherSpec()
	delete(spec.Emissions, "sunny")

	r, err := hmm.Decode([]string{"walk", "shop"}, spec.States, spec.Start, spec.Transitions, spec.Emissions)
	require.NoError(t, err)
	assert.Equal(t, []string{"rainy", "rainy"}, r.Names)
	assert.InDelta(t, 0.6*0.1*0.7*0.4, r.Probability, 1e-15)
}

func TestDecode_InvalidInput(t *testing.T) {
	spec := weatherSpec()

	_, err := hmm.Decode(nil, spec.States, spec.Start, spec.Transitions, spec.Emissions)
	assert.True(t, errors.Is(err, hmm.ErrEmptyObservations))

	_, err = hmm.Decode([]string{"walk"}, nil, spec.Start, spec.Transitions, spec.Emissions)
	assert.True(t, errors.Is(err, hmm.ErrNoStates))
}

func TestDecodeIndices_OutOfRangeSymbols(t *testing.T) {
	m, err := hmm.NewModel(weatherSpec())
	require.NoError(t, err)

	r, err := m.DecodeIndices([]int{m.SymbolIndex("walk"), 99})
	require.NoError(t, err)
	assert.True(t, r.Degenerate())

	r, err = m.DecodeIndices([]int{m.SymbolIndex("walk"), m.SymbolIndex("shop"), m.SymbolIndex("walk")})
	require.NoError(t, err)
	assert.Equal(t, []string{"sunny", "sunny", "sunny"}, r.Names)
}

func randomSpec(r *rand.Rand, n, symbols int) hmm.Spec {
	spec := hmm.Spec{
		Start:       map[string]float64{},
		Transitions: map[string]map[string]float64{},
		Emissions:   map[string]map[string]float64{},
	}
	for i := 0; i < n; i++ {
		spec.States = append(spec.States, string(rune('A'+i)))
	}
	for i := 0; i < symbols; i++ {
		spec.Symbols = append(spec.Symbols, string(rune('a'+i)))
	}
	for _, s := range spec.States {
		spec.Start[s] = r.Float64()
		spec.Transitions[s] = map[string]float64{}
		for _, to := range spec.States {
			spec.Transitions[s][to] = r.Float64()
		}
		spec.Emissions[s] = map[string]float64{}
		for _, sym := range spec.Symbols {
			spec.Emissions[s][sym] = r.Float64()
		}
	}
	return spec
}

func allPaths(n, length int) [][]hmm.State {
	if length == 0 {
		return [][]hmm.State{nil}
	}
	var out [][]hmm.State
	for _, prefix := range allPaths(n, length-1) {
		for s := 0; s < n; s++ {
			p := append(append([]hmm.State(nil), prefix...), hmm.State(s))
			out = append(out, p)
		}
	}
	return out
}

func TestDecode_MatchesExhaustiveSearch(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for trial := 0; trial < 25; trial++ {
		spec := randomSpec(r, 3, 2)
		m, err := hmm.NewModel(spec)
		require.NoError(t, err)

		obs := make([]string, 1+r.Intn(4))
		for i := range obs {
			obs[i] = spec.Symbols[r.Intn(len(spec.Symbols))]
		}

		got, err := m.Decode(obs)
		require.NoError(t, err)
		require.Len(t, got.Path, len(obs))
		assert.GreaterOrEqual(t, got.Probability, 0.0)
		assert.LessOrEqual(t, got.Probability, 1.0)

		scored, err := m.PathProbability(got.Path, obs)
		require.NoError(t, err)
		assert.Equal(t, got.Probability, scored, "decoded probability must be the product along its path")

		best := 0.0
		for _, p := range allPaths(m.NumStates(), len(obs)) {
			prob, err := m.PathProbability(p, obs)
			require.NoError(t, err)
			best = math.Max(best, prob)
		}
		assert.InDelta(t, best, got.Probability, 1e-15, "trial %d", trial)

		again, err := m.Decode(obs)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}
