package hmm

// Result is the best path and its joint probability with the observations.
type Result struct {
	Path        []State
	Names       []string // "" where Path holds NoState
	Probability float64
}

func newResult(m *Model, path []State, prob float64) Result {
	names := make([]string, len(path))
	for i, s := range path {
		names[i], _ = m.StateName(s)
	}
	return Result{Path: path, Names: names, Probability: prob}
}

// Degenerate reports whether no state path explains the observations with
// positive probability.
func (r Result) Degenerate() bool {
	return len(r.Path) == 0 || r.Path[len(r.Path)-1] == NoState
}
