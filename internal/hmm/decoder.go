package hmm

// Trellis is the lattice of best partial-path probabilities together with
// the backpointer table, one column per time step.
type Trellis struct {
	model *Model
	probs [][]float64 // probs[t][s]
	back  [][]State   // back[t][s], NoState at t=0 and for unreachable cells
}

// Decode returns the most probable state path for the observations.
func (m *Model) Decode(observations []string) (Result, error) {
	return m.DecodeIndices(m.Encode(observations))
}

// DecodeIndices is Decode over symbol IDs. IDs outside the model's symbol
// range emit with probability 0.
func (m *Model) DecodeIndices(observations []int) (Result, error) {
	tr, err := m.trellis(observations)
	if err != nil {
		return Result{}, err
	}
	return tr.BestPath(), nil
}

// Trellis builds the full lattice for the observations without extracting
// a path.
func (m *Model) Trellis(observations []string) (*Trellis, error) {
	return m.trellis(m.Encode(observations))
}

func (m *Model) trellis(obs []int) (*Trellis, error) {
	if len(obs) == 0 {
		return nil, ErrEmptyObservations
	}
	n := len(m.states)
	tr := &Trellis{
		model: m,
		probs: make([][]float64, len(obs)),
		back:  make([][]State, len(obs)),
	}

	// Initialization (t=0)
	col := make([]float64, n)
	back := make([]State, n)
	for s := 0; s < n; s++ {
		start, err := m.startProb(s)
		if err != nil {
			return nil, err
		}
		col[s] = start * m.emission(s, obs[0])
		back[s] = NoState
	}
	tr.probs[0], tr.back[0] = col, back

	// Recurrence
	for t := 1; t < len(obs); t++ {
		prev := tr.probs[t-1]
		col := make([]float64, n)
		back := make([]State, n)
		for s := 0; s < n; s++ {
			emit := m.emission(s, obs[t])
			best := 0.0
			bestPrev := NoState
			for p := 0; p < n; p++ {
				trans, err := m.transProb(p, s)
				if err != nil {
					return nil, err
				}
				// strict > keeps the earliest predecessor on ties
				if score := prev[p] * trans * emit; score > best {
					best = score
					bestPrev = State(p)
				}
			}
			col[s] = best
			back[s] = bestPrev
		}
		tr.probs[t], tr.back[t] = col, back
	}

	return tr, nil
}

// Len returns the number of time steps T.
func (tr *Trellis) Len() int { return len(tr.probs) }

// Prob returns the best partial-path probability of state s at time t.
func (tr *Trellis) Prob(t int, s State) float64 {
	return tr.probs[t][s]
}

// Backpointer returns the predecessor of s at time t. The predecessor of
// NoState is NoState.
func (tr *Trellis) Backpointer(t int, s State) State {
	if s == NoState {
		return NoState
	}
	return tr.back[t][s]
}

// Column returns a copy of lattice column t.
func (tr *Trellis) Column(t int) []float64 {
	return append([]float64(nil), tr.probs[t]...)
}

// BestPath scans the final column and follows backpointers to time 0.
// When every final probability is 0 the path holds NoState everywhere and
// the probability is 0.
func (tr *Trellis) BestPath() Result {
	T := len(tr.probs)

	// Termination
	best := 0.0
	final := NoState
	for s, p := range tr.probs[T-1] {
		if p > best {
			best = p
			final = State(s)
		}
	}

	// Backtrack
	path := make([]State, T)
	path[T-1] = final
	for t := T - 1; t > 0; t-- {
		path[t-1] = tr.Backpointer(t, path[t])
	}

	return newResult(tr.model, path, best)
}

// Decode runs the decoder directly over string-keyed parameters. states
// fixes the iteration order used for tie-breaking.
func Decode(observations, states []string, start map[string]float64, transitions, emissions map[string]map[string]float64) (Result, error) {
	m, err := NewModel(Spec{
		States:      states,
		Start:       start,
		Transitions: transitions,
		Emissions:   emissions,
	})
	if err != nil {
		return Result{}, err
	}
	return m.Decode(observations)
}
