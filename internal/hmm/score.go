package hmm

import "github.com/pkg/errors"

// Path converts state names to IDs.
func (m *Model) Path(names []string) ([]State, error) {
	path := make([]State, len(names))
	for i, name := range names {
		s, ok := m.stateIdx[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownState, "%q at position %d", name, i)
		}
		path[i] = s
	}
	return path, nil
}

// PathProbability returns P(path, observations | model), multiplying factors
// in the same order as the decoder so a decoded path scores exactly its
// decoded probability.
func (m *Model) PathProbability(path []State, observations []string) (float64, error) {
	if len(observations) == 0 {
		return 0, ErrEmptyObservations
	}
	if len(path) != len(observations) {
		return 0, errors.Wrapf(ErrPathLength, "%d states for %d observations", len(path), len(observations))
	}
	for i, s := range path {
		if _, ok := m.StateName(s); !ok {
			return 0, errors.Wrapf(ErrUnknownState, "id %d at position %d", s, i)
		}
	}

	obs := m.Encode(observations)
	start, err := m.startProb(int(path[0]))
	if err != nil {
		return 0, err
	}
	prob := start * m.emission(int(path[0]), obs[0])
	for t := 1; t < len(path); t++ {
		trans, err := m.transProb(int(path[t-1]), int(path[t]))
		if err != nil {
			return 0, err
		}
		prob = prob * trans * m.emission(int(path[t]), obs[t])
	}
	return prob, nil
}
