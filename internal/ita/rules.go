package ita

import "math"

// Outcome is the score/label pair a rule table produces for one record.
type Outcome struct {
	Score float64
	Label string
}

// Rule pairs a predicate with its outcome. Rule tables are ordered,
// first-match-wins lists: evaluation stops at the first rule whose predicate
// holds. The income, adherence and ITA classification tables all share this
// evaluator.
type Rule[T any] struct {
	Name    string
	Match   func(T) bool
	Outcome Outcome
}

// Evaluate runs an ordered rule table over one input. Inputs matching no rule
// receive the fallback outcome, which callers keep distinct from every rule's
// outcome so unclassified records stay recognizable.
func Evaluate[T any](rules []Rule[T], in T, fallback Outcome) Outcome {
	for _, r := range rules {
		if r.Match(in) {
			return r.Outcome
		}
	}
	return fallback
}

// unscored marks fallback outcomes that carry a label but no numeric score.
func unscored(label string) Outcome {
	return Outcome{Score: math.NaN(), Label: label}
}
