package modelfile

import (
	"sort"

	"github.com/trknhr/viterbi/internal/hmm"
)

// Document is the serialisable form of an HMM.
type Document struct {
	Name        string                        `yaml:"name,omitempty" json:"name,omitempty"`
	States      []string                      `yaml:"states" json:"states"`
	Symbols     []string                      `yaml:"symbols,omitempty" json:"symbols,omitempty"`
	Start       map[string]float64            `yaml:"start" json:"start"`
	Transitions map[string]map[string]float64 `yaml:"transitions" json:"transitions"`
	Emissions   map[string]map[string]float64 `yaml:"emissions" json:"emissions"`
}

// FromSpec wraps spec in a named document.
func FromSpec(name string, spec hmm.Spec) *Document {
	return &Document{
		Name:        name,
		States:      spec.States,
		Symbols:     spec.Symbols,
		Start:       spec.Start,
		Transitions: spec.Transitions,
		Emissions:   spec.Emissions,
	}
}

// Spec returns the decoder parameters. Without an explicit state list the
// start row's keys are used in sorted order.
func (d *Document) Spec() hmm.Spec {
	states := d.States
	if len(states) == 0 {
		for s := range d.Start {
			states = append(states, s)
		}
		sort.Strings(states)
	}
	return hmm.Spec{
		States:      states,
		Symbols:     d.Symbols,
		Start:       d.Start,
		Transitions: d.Transitions,
		Emissions:   d.Emissions,
	}
}

func (d *Document) Model() (*hmm.Model, error) {
	return hmm.NewModel(d.Spec())
}
