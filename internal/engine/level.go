package engine

import (
	"github.com/felixgeelhaar/skillquest/internal/rules"
)

var (
	defaultAdvanced     = rules.Band{Gte: float64Ptr(85)}
	defaultIntermediate = rules.Band{Gte: float64Ptr(60), Lt: float64Ptr(85)}
	defaultBeginner     = rules.Band{Lt: float64Ptr(60)}
)

// LevelOf classifies score. Bands are tried advanced first, then
// intermediate, then beginner; the first band containing the score wins, so
// overlapping overrides resolve toward the higher tier. A band override
// replaces both of that band's bounds.
func LevelOf(score int, resolver rules.LevelResolver) rules.Level {
	bands := []struct {
		level rules.Level
		band  rules.Band
	}{
		{rules.Advanced, bandOr(resolver.Default.Advanced, defaultAdvanced)},
		{rules.Intermediate, bandOr(resolver.Default.Intermediate, defaultIntermediate)},
		{rules.Beginner, bandOr(resolver.Default.Beginner, defaultBeginner)},
	}
	for _, b := range bands {
		if b.band.Contains(score) {
			return b.level
		}
	}

	// Overrides left a gap.
	switch {
	case score >= 85:
		return rules.Advanced
	case score >= 60:
		return rules.Intermediate
	}
	return rules.Beginner
}

func bandOr(override *rules.Band, def rules.Band) rules.Band {
	if override != nil {
		return *override
	}
	return def
}

func float64Ptr(v float64) *float64 { return &v }
