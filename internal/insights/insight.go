// Package insights evaluates a table of independent heuristic rules over
// the aggregates and RFV profiles of one analysis run, producing ranked,
// human-readable findings. Rules are stateless and individually testable; a
// rule that cannot evaluate is skipped and logged, never fatal.
package insights

import "errors"

// Priority orders findings: risk ahead of opportunity ahead of informational.
type Priority int

const (
	PriorityInfo Priority = iota + 1
	PriorityOpportunity
	PriorityRisk
)

func (p Priority) String() string {
	switch p {
	case PriorityRisk:
		return "risk"
	case PriorityOpportunity:
		return "opportunity"
	default:
		return "informational"
	}
}

// Insight is a single finding with its supporting metric value.
type Insight struct {
	Rule     string
	Category string
	Priority Priority
	Message  string
	Metric   float64 // supporting value, meaning depends on the rule
}

// ErrInsufficientData marks a rule that cannot evaluate on this dataset,
// e.g. a trend over fewer than two complete periods. The rule is skipped.
var ErrInsufficientData = errors.New("insights: insufficient data")
