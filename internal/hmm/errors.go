package hmm

import "github.com/pkg/errors"

var (
	// ErrMissingModelEntry is returned when a decode looks up a start or
	// transition probability the model does not define.
	ErrMissingModelEntry = errors.New("missing model entry")

	ErrNoStates          = errors.New("model has no states")
	ErrEmptyStateName    = errors.New("empty state name")
	ErrDuplicateState    = errors.New("duplicate state")
	ErrUnknownState      = errors.New("unknown state")
	ErrEmptyObservations = errors.New("empty observation sequence")
	ErrPathLength        = errors.New("path length does not match observations")
)
