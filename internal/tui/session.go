package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/trknhr/viterbi/internal/engine"
	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/sequence"
	"github.com/trknhr/viterbi/internal/shell"
	"github.com/trknhr/viterbi/internal/store"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	pathStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	degenerateStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle       = lipgloss.NewStyle().Faint(true)
)

type tuiModel struct {
	input  textinput.Model
	list   list.Model
	engine *engine.Engine
	width  int
	height int

	model    string
	pending  string
	response *engine.Response
	err      error
}

// compactDelegate renders items in a single-line compact form.
type compactDelegate struct{}

func (d compactDelegate) Height() int                               { return 1 }
func (d compactDelegate) Spacing() int                              { return 0 }
func (d compactDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d compactDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(modelItem)
	if !ok {
		return
	}
	str := fmt.Sprintf("%s (%d states, %d symbols)", i.info.Name, i.info.NumStates, i.info.NumSymbols)
	if index == m.Index() {
		str = selectedStyle.Render("> " + str)
	} else {
		str = "  " + str
	}
	fmt.Fprint(w, str)
}

type modelItem struct{ info store.ModelInfo }

func (i modelItem) Title() string       { return i.info.Name }
func (i modelItem) Description() string { return "" }
func (i modelItem) FilterValue() string { return i.info.Name }

// NewTuiModel lists the registry's models; initialModel preselects one and
// initialInput pre-fills the observation line.
func NewTuiModel(e *engine.Engine, initialModel, initialInput string) (*tuiModel, error) {
	infos, err := e.Models().ListModels()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list models")
	}
	if len(infos) == 0 {
		return nil, errors.New("no models registered; import one with `viterbi model import`")
	}

	items := make([]list.Item, 0, len(infos))
	selected := 0
	for i, info := range infos {
		items = append(items, modelItem{info})
		if info.Name == initialModel {
			selected = i
		}
	}

	input := textinput.New()
	input.Placeholder = "Type observations, e.g. walk shop walk"
	input.SetValue(initialInput)
	input.Focus()

	l := list.New(items, &compactDelegate{}, 40, 10)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Select(selected)

	return &tuiModel{
		input:  input,
		list:   l,
		engine: e,
		model:  infos[selected].Name,
	}, nil
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

type decodedMsg struct {
	model    string
	line     string
	response engine.Response
	err      error
}

func decodeCmd(e *engine.Engine, model, line string) tea.Cmd {
	return func() tea.Msg {
		resp, err := e.Decode(context.Background(), engine.Request{
			Model:        model,
			Observations: sequence.Split(line),
		})
		return decodedMsg{model: model, line: line, response: resp, err: err}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-10, 3))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.pending = line
			return m, decodeCmd(m.engine, m.model, line)

		case tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			if item, ok := m.list.SelectedItem().(modelItem); ok && item.info.Name != m.model {
				m.model = item.info.Name
				m.response = nil
				m.err = nil
			}
			return m, cmd

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

	case decodedMsg:
		if msg.model != m.model || msg.line != m.pending {
			// discard outdated results
			return m, nil
		}
		m.pending = ""
		if msg.err != nil {
			logger.Debug("decode failed: %v", msg.err)
			m.response, m.err = nil, msg.err
			return m, nil
		}
		resp := msg.response
		m.response, m.err = &resp, nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Viterbi") + "\n\n")
	b.WriteString(m.list.View() + "\n\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(degenerateStyle.Render("error: "+m.err.Error()) + "\n")
	case m.response != nil:
		b.WriteString(renderResponse(*m.response))
	case m.pending != "":
		b.WriteString(helpStyle.Render("decoding...") + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("(↑/↓ model, Enter decode, Esc/Ctrl+C quit)"))
	return b.String()
}

func renderResponse(r engine.Response) string {
	var b strings.Builder
	prob := strconv.FormatFloat(r.Probability, 'g', -1, 64)
	if r.Degenerate {
		b.WriteString(degenerateStyle.Render("no state path explains these observations") + "\n")
		b.WriteString(degenerateStyle.Render("path: "+shell.FormatPath(r.Path)) + "\n")
	} else {
		b.WriteString("path: " + pathStyle.Render(shell.FormatPath(r.Path)) + "\n")
	}
	b.WriteString("probability: " + prob + "\n")
	if len(r.Unknown) > 0 {
		b.WriteString(warnStyle.Render("unknown symbols: "+strings.Join(r.Unknown, ", ")) + "\n")
	}
	return b.String()
}

// Response is the last successful decode, nil if none.
func (m *tuiModel) Response() *engine.Response {
	return m.response
}

func (m *tuiModel) SelectedModel() string {
	return m.model
}

// Run starts the interactive program on the terminal.
func Run(e *engine.Engine, initialModel, initialInput string) error {
	m, err := NewTuiModel(e, initialModel, initialInput)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
