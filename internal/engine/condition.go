package engine

import (
	"github.com/felixgeelhaar/skillquest/internal/rules"
)

// Evaluate reports whether c holds for scores. A missing domain scores 0.
// Unrecognised nodes never hold.
func Evaluate(c rules.Condition, scores map[string]int) bool {
	switch n := c.(type) {
	case rules.LeafCondition:
		s := float64(Clamp(scores[n.Domain]))
		if n.Lt != nil && !(s < *n.Lt) {
			return false
		}
		if n.Lte != nil && !(s <= *n.Lte) {
			return false
		}
		if n.Gt != nil && !(s > *n.Gt) {
			return false
		}
		if n.Gte != nil && !(s >= *n.Gte) {
			return false
		}
		return true

	case rules.AnyCondition:
		for _, child := range n.Children {
			if Evaluate(child, scores) {
				return true
			}
		}
		return false

	case rules.AllCondition:
		for _, child := range n.Children {
			if !Evaluate(child, scores) {
				return false
			}
		}
		return true
	}
	return false
}

// Advice returns the message of every recommendation whose condition holds,
// in declaration order.
func Advice(recs []rules.Recommendation, scores map[string]int) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		if Evaluate(rec.If, scores) {
			out = append(out, rec.Then)
		}
	}
	return out
}
