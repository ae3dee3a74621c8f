package engine

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/skillquest/internal/rules"
)

const (
	typeBoost         = 3
	timePressureBoost = 2

	defaultMaxHours = 10.0
)

// Lookup resolves a dotted path such as "prefs.video" in a nested signal map.
// It reports false when any segment is missing or not a map.
func Lookup(signals map[string]any, path string) (any, bool) {
	var cur any = signals
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	}
	return nil, false
}

// truthy follows the usual dynamic-language notion: zero values and empty
// collections are false. Strings that parse as a boolean use that value.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}

func signalSet(signals map[string]any, path, name string) bool {
	if path == "" {
		path = name
	}
	v, ok := Lookup(signals, path)
	return ok && truthy(v)
}

// Boost reorders resources by the additive boosts earned from signals.
// Ties keep catalog order. The input slice is not modified.
func Boost(resources []rules.Resource, signals map[string]any, sr rules.SignalRules) []rules.Resource {
	scores := make([]int, len(resources))

	for _, tb := range []struct {
		name string
		rule *rules.TypeBoost
	}{
		{"prefers_video", sr.PrefersVideo},
		{"likes_hands_on", sr.LikesHandsOn},
	} {
		if tb.rule == nil || !signalSet(signals, tb.rule.Signal, tb.name) {
			continue
		}
		types := make(map[string]bool, len(tb.rule.BoostTypes))
		for _, t := range tb.rule.BoostTypes {
			types[strings.ToLower(t)] = true
		}
		for i, r := range resources {
			if types[strings.ToLower(r.Type)] {
				scores[i] += typeBoost
			}
		}
	}

	if tp := sr.TimePressureHigh; tp != nil && signalSet(signals, tp.Signal, "time_pressure_high") {
		maxHours := defaultMaxHours
		if tp.PreferEstUnderHours != nil {
			maxHours = *tp.PreferEstUnderHours
		}
		for i, r := range resources {
			if h, ok := minHours(r.Est); ok && h <= maxHours {
				scores[i] += timePressureBoost
			}
		}
	}

	order := make([]int, len(resources))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	out := make([]rules.Resource, len(resources))
	for i, idx := range order {
		out[i] = resources[idx]
	}
	return out
}

// minHours returns the smallest hour figure in an estimate such as "2h",
// "1.5h – 3h" or "4-6h".
func minHours(est string) (float64, bool) {
	est = strings.ReplaceAll(est, "–", "-")

	var hours []float64
	for _, tok := range strings.Fields(est) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		num, ok := strings.CutSuffix(tok, "h")
		if !ok {
			continue
		}
		// Ranges such as "4-6h" do not parse and are skipped.
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			hours = append(hours, f)
		}
	}

	found := false
	lowest := math.Inf(1)
	for _, h := range hours {
		if math.IsNaN(h) {
			continue
		}
		if h < lowest {
			lowest = h
		}
		found = true
	}
	return lowest, found
}

// Pick returns up to needed resources for domain at level, ranked by Boost.
func Pick(domain string, level rules.Level, r *rules.Rules, needed int, signals map[string]any) []rules.Resource {
	if needed <= 0 {
		return nil
	}
	candidates := r.Resources.Domains[domain][level]
	if len(candidates) == 0 {
		return nil
	}
	ranked := Boost(candidates, signals, r.SignalRules)
	if len(ranked) > needed {
		ranked = ranked[:needed]
	}
	return ranked
}
