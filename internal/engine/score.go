// Package engine builds time-boxed learning plans from skill scores,
// behavioral signals and a rule document.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// shared state, no randomness. Malformed input degrades to neutral defaults
// instead of producing an error, so a plan is always returned.
package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Clamp coerces v to a number, rounds half to even and clamps the result to
// [0, 100]. Values that cannot be coerced, NaN and infinities yield 0.
func Clamp(v any) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	r := math.RoundToEven(f)
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return int(r)
}

// NormalizeScores clamps every score of raw.
func NormalizeScores(raw map[string]any) map[string]int {
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		out[k] = Clamp(v)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// WeightedOverall combines per-domain scores into one score. Domains without
// a weight contribute nothing; when no domain carries positive weight the
// result is 0.
func WeightedOverall(scores map[string]int, weights map[string]float64) int {
	var num, den float64
	for domain, score := range scores {
		w := weights[domain]
		num += w * float64(Clamp(score))
		den += w
	}
	if den <= 0 {
		return 0
	}
	return Clamp(num / den)
}
