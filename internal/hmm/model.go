package hmm

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// State is the integer ID of a hidden state, assigned in the order the
// model lists its states.
type State int

// NoState marks "no predecessor" in a backpointer column and the final
// position of a degenerate path.
const NoState State = -1

// Spec is the string-keyed description of a discrete HMM.
//
// States fixes the iteration order used for tie-breaking. Symbols is optional;
// symbols that only appear in Emissions are appended in sorted order.
type Spec struct {
	States      []string
	Symbols     []string
	Start       map[string]float64
	Transitions map[string]map[string]float64
	Emissions   map[string]map[string]float64
}

// Model is a compiled HMM with dense, integer-indexed parameters.
// It is immutable after construction and safe for concurrent use.
type Model struct {
	states    []string
	stateIdx  map[string]State
	symbols   []string
	symbolIdx map[string]int

	start    []float64
	hasStart []bool

	trans    *mat.Dense // N x N, row = from, col = to
	hasTrans []bool     // row-major N x N

	emit *mat.Dense // N x M, nil when the model has no symbols
}

// NewModel compiles spec into a Model.
//
// Only structural problems are reported here. Missing start or transition
// entries are remembered and fail the decode that looks them up.
// Rows naming states outside spec.States are ignored; Check reports them.
func NewModel(spec Spec) (*Model, error) {
	n := len(spec.States)
	if n == 0 {
		return nil, ErrNoStates
	}

	m := &Model{
		states:    make([]string, n),
		stateIdx:  make(map[string]State, n),
		symbolIdx: make(map[string]int),
		start:     make([]float64, n),
		hasStart:  make([]bool, n),
		trans:     mat.NewDense(n, n, nil),
		hasTrans:  make([]bool, n*n),
	}

	for i, name := range spec.States {
		if name == "" {
			return nil, errors.Wrapf(ErrEmptyStateName, "state #%d", i)
		}
		if _, dup := m.stateIdx[name]; dup {
			return nil, errors.Wrapf(ErrDuplicateState, "state %q", name)
		}
		m.states[i] = name
		m.stateIdx[name] = State(i)
	}

	for _, sym := range spec.Symbols {
		m.addSymbol(sym)
	}
	var extra []string
	seen := make(map[string]bool)
	for _, row := range spec.Emissions {
		for sym := range row {
			if _, ok := m.symbolIdx[sym]; !ok && !seen[sym] {
				seen[sym] = true
				extra = append(extra, sym)
			}
		}
	}
	sort.Strings(extra)
	for _, sym := range extra {
		m.addSymbol(sym)
	}

	for i, name := range m.states {
		if p, ok := spec.Start[name]; ok {
			m.start[i] = p
			m.hasStart[i] = true
		}
	}

	for from, row := range spec.Transitions {
		fi, ok := m.stateIdx[from]
		if !ok {
			continue
		}
		for to, p := range row {
			ti, ok := m.stateIdx[to]
			if !ok {
				continue
			}
			m.trans.Set(int(fi), int(ti), p)
			m.hasTrans[int(fi)*n+int(ti)] = true
		}
	}

	if len(m.symbols) > 0 {
		m.emit = mat.NewDense(n, len(m.symbols), nil)
		for name, row := range spec.Emissions {
			si, ok := m.stateIdx[name]
			if !ok {
				continue
			}
			for sym, p := range row {
				m.emit.Set(int(si), m.symbolIdx[sym], p)
			}
		}
	}

	return m, nil
}

func (m *Model) addSymbol(sym string) {
	if _, ok := m.symbolIdx[sym]; ok {
		return
	}
	m.symbolIdx[sym] = len(m.symbols)
	m.symbols = append(m.symbols, sym)
}

// NumStates returns N.
func (m *Model) NumStates() int { return len(m.states) }

// States returns the state names in iteration order.
func (m *Model) States() []string {
	return append([]string(nil), m.states...)
}

// Symbols returns the known observation symbols in ID order.
func (m *Model) Symbols() []string {
	return append([]string(nil), m.symbols...)
}

// StateName returns the name of s, or false for NoState and out-of-range IDs.
func (m *Model) StateName(s State) (string, bool) {
	if s < 0 || int(s) >= len(m.states) {
		return "", false
	}
	return m.states[s], true
}

// StateIndex returns the ID of the named state.
func (m *Model) StateIndex(name string) (State, bool) {
	s, ok := m.stateIdx[name]
	return s, ok
}

// SymbolIndex returns the ID of sym, or -1 when the model has no emission
// column for it.
func (m *Model) SymbolIndex(sym string) int {
	if i, ok := m.symbolIdx[sym]; ok {
		return i
	}
	return -1
}

// Encode maps observation symbols to symbol IDs; unknown symbols become -1.
func (m *Model) Encode(observations []string) []int {
	ids := make([]int, len(observations))
	for i, o := range observations {
		ids[i] = m.SymbolIndex(o)
	}
	return ids
}

// UnknownSymbols returns the distinct observations the model cannot emit,
// in first-seen order.
func (m *Model) UnknownSymbols(observations []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, o := range observations {
		if _, ok := m.symbolIdx[o]; ok || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

func (m *Model) startProb(s int) (float64, error) {
	if !m.hasStart[s] {
		return 0, errors.Wrapf(ErrMissingModelEntry, "start[%s]", m.states[s])
	}
	return m.start[s], nil
}

func (m *Model) transProb(from, to int) (float64, error) {
	if !m.hasTrans[from*len(m.states)+to] {
		return 0, errors.Wrapf(ErrMissingModelEntry, "transition[%s][%s]", m.states[from], m.states[to])
	}
	return m.trans.At(from, to), nil
}

// emission is 0 for unknown symbols and for states without an entry.
func (m *Model) emission(s, sym int) float64 {
	if m.emit == nil || sym < 0 || sym >= len(m.symbols) {
		return 0
	}
	return m.emit.At(s, sym)
}
