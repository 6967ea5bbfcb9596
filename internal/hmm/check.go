package hmm

import (
	"fmt"
	"math"
	"sort"
)

// SumTolerance is how far a probability row may stray from 1 before Check
// reports it.
const SumTolerance = 1e-6

type IssueKind int

const (
	IssueMissingStart IssueKind = iota
	IssueMissingTransition
	IssueMissingEmissions
	IssueNegative
	IssueRowSum
	IssueUnknownState
)

func (k IssueKind) String() string {
	switch k {
	case IssueMissingStart:
		return "missing-start"
	case IssueMissingTransition:
		return "missing-transition"
	case IssueMissingEmissions:
		return "missing-emissions"
	case IssueNegative:
		return "negative"
	case IssueRowSum:
		return "row-sum"
	case IssueUnknownState:
		return "unknown-state"
	}
	return "unknown"
}

// Issue is an advisory finding about a Spec. None of them stop a decode by
// themselves; missing start and transition entries fail it once looked up.
type Issue struct {
	Kind   IssueKind
	Where  string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Where, i.Detail)
}

// Check inspects spec without modifying it.
func Check(spec Spec) []Issue {
	var issues []Issue
	known := make(map[string]bool, len(spec.States))
	for _, s := range spec.States {
		known[s] = true
	}

	var startSum float64
	for _, s := range spec.States {
		p, ok := spec.Start[s]
		if !ok {
			issues = append(issues, Issue{IssueMissingStart, "start[" + s + "]", "no entry"})
			continue
		}
		if p < 0 {
			issues = append(issues, Issue{IssueNegative, "start[" + s + "]", fmt.Sprintf("%g", p)})
		}
		startSum += p
	}
	if len(spec.Start) > 0 && math.Abs(startSum-1) > SumTolerance {
		issues = append(issues, Issue{IssueRowSum, "start", fmt.Sprintf("sums to %g", startSum)})
	}

	for _, from := range spec.States {
		row := spec.Transitions[from]
		var sum float64
		for _, to := range spec.States {
			p, ok := row[to]
			where := "transition[" + from + "][" + to + "]"
			if !ok {
				issues = append(issues, Issue{IssueMissingTransition, where, "no entry"})
				continue
			}
			if p < 0 {
				issues = append(issues, Issue{IssueNegative, where, fmt.Sprintf("%g", p)})
			}
			sum += p
		}
		if len(row) > 0 && math.Abs(sum-1) > SumTolerance {
			issues = append(issues, Issue{IssueRowSum, "transition[" + from + "]", fmt.Sprintf("sums to %g", sum)})
		}
	}

	for _, s := range spec.States {
		row, ok := spec.Emissions[s]
		if !ok {
			issues = append(issues, Issue{IssueMissingEmissions, "emission[" + s + "]", "every symbol emits with probability 0"})
			continue
		}
		var sum float64
		for _, sym := range sortedKeys(row) {
			p := row[sym]
			if p < 0 {
				issues = append(issues, Issue{IssueNegative, "emission[" + s + "][" + sym + "]", fmt.Sprintf("%g", p)})
			}
			sum += p
		}
		if math.Abs(sum-1) > SumTolerance {
			issues = append(issues, Issue{IssueRowSum, "emission[" + s + "]", fmt.Sprintf("sums to %g", sum)})
		}
	}

	for _, table := range []struct {
		name string
		keys []string
	}{
		{"start", sortedKeys(spec.Start)},
		{"transition", sortedKeys(spec.Transitions)},
		{"emission", sortedKeys(spec.Emissions)},
	} {
		for _, k := range table.keys {
			if !known[k] {
				issues = append(issues, Issue{IssueUnknownState, table.name + "[" + k + "]", "state is not declared; row ignored"})
			}
		}
	}
	for _, from := range sortedKeys(spec.Transitions) {
		if !known[from] {
			continue
		}
		for _, to := range sortedKeys(spec.Transitions[from]) {
			if !known[to] {
				issues = append(issues, Issue{IssueUnknownState, "transition[" + from + "][" + to + "]", "state is not declared; entry ignored"})
			}
		}
	}

	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
