package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trknhr/viterbi/internal/engine"
	"github.com/trknhr/viterbi/internal/modelfile"
	"github.com/trknhr/viterbi/internal/store"
)

func setupEngine(t *testing.T) *engine.Engine {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	models := store.NewSQLModelStore(db)
	require.NoError(t, models.SaveModel(&modelfile.Document{
		Name:        "coins",
		States:      []string{"fair", "loaded"},
		Start:       map[string]float64{"fair": 0.5, "loaded": 0.5},
		Transitions: map[string]map[string]float64{"fair": {"fair": 0.9, "loaded": 0.1}, "loaded": {"fair": 0.1, "loaded": 0.9}},
		Emissions:   map[string]map[string]float64{"fair": {"h": 0.5, "t": 0.5}, "loaded": {"h": 0.9, "t": 0.1}},
	}))
	require.NoError(t, models.SaveModel(&modelfile.Document{
		Name:        "weather",
		States:      []string{"rainy", "sunny"},
		Start:       map[string]float64{"rainy": 0.6, "sunny": 0.4},
		Transitions: map[string]map[string]float64{"rainy": {"rainy": 0.7, "sunny": 0.3}, "sunny": {"rainy": 0.4, "sunny": 0.6}},
		Emissions:   map[string]map[string]float64{"rainy": {"walk": 0.1, "shop": 0.4}, "sunny": {"walk": 0.6, "shop": 0.3}},
	}))
	return engine.New(models, nil, nil, false)
}

// press runs one key through Update and feeds any resulting message back.
func press(t *testing.T, m *tuiModel, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(decodedMsg); ok {
		m.Update(msg)
	}
}

func TestTui_DecodesSelectedModel(t *testing.T) {
	m, err := NewTuiModel(setupEngine(t), "weather", "walk shop walk")
	require.NoError(t, err)
	assert.Equal(t, "weather", m.SelectedModel())

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	resp := m.Response()
	require.NotNil(t, resp)
	assert.Equal(t, []string{"sunny", "sunny", "sunny"}, resp.Path)
	assert.Contains(t, m.View(), "[sunny sunny sunny]")
}

func TestTui_DegenerateIsFlagged(t *testing.T) {
	m, err := NewTuiModel(setupEngine(t), "weather", "fly")
	require.NoError(t, err)

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.Response())
	assert.True(t, m.Response().Degenerate)
	view := m.View()
	assert.Contains(t, view, "no state path explains these observations")
	assert.Contains(t, view, "unknown symbols: fly")
}

func TestTui_SwitchingModelClearsResult(t *testing.T) {
	m, err := NewTuiModel(setupEngine(t), "weather", "h h t")
	require.NoError(t, err)

	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "coins", m.SelectedModel())
	assert.Nil(t, m.Response())

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.Response())
	assert.Equal(t, "coins", m.Response().Model)
}

func TestTui_StaleResultDiscarded(t *testing.T) {
	m, err := NewTuiModel(setupEngine(t), "weather", "walk")
	require.NoError(t, err)

	m.Update(decodedMsg{model: "weather", line: "shop", response: engine.Response{Model: "weather"}})
	assert.Nil(t, m.Response())
}

func TestTui_EmptyRegistry(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewTuiModel(engine.New(store.NewSQLModelStore(db), nil, nil, false), "", "")
	assert.Error(t, err)
}
