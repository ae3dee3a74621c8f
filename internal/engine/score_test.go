package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/felixgeelhaar/skillquest/internal/rules"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int in range", 42, 42},
		{"float rounds down", 42.4, 42},
		{"float rounds up", 42.6, 43},
		{"half rounds to even (down)", 50.5, 50},
		{"half rounds to even (up)", 51.5, 52},
		{"negative clamps to 0", -3, 0},
		{"over 100 clamps", 150.0, 100},
		{"numeric string", " 77.2 ", 77},
		{"json number", json.Number("88"), 88},
		{"non numeric string", "abc", 0},
		{"nil", nil, 0},
		{"true", true, 1},
		{"false", false, 0},
		{"NaN", math.NaN(), 0},
		{"+Inf", math.Inf(1), 0},
		{"-Inf", math.Inf(-1), 0},
		{"unsupported type", []int{1}, 0},
		{"uint8", uint8(99), 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.in)
			if got != tt.want {
				t.Errorf("Clamp(%v) = %d, want %d", tt.in, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("Clamp(%v) = %d, out of range", tt.in, got)
			}
			if again := Clamp(got); again != got {
				t.Errorf("Clamp(Clamp(%v)) = %d, want %d", tt.in, again, got)
			}
		})
	}
}

func TestWeightedOverall(t *testing.T) {
	tests := []struct {
		name    string
		scores  map[string]int
		weights map[string]float64
		want    int
	}{
		{"empty", map[string]int{}, map[string]float64{}, 0},
		{"no weights", map[string]int{"a": 50}, map[string]float64{}, 0},
		{"zero weights", map[string]int{"a": 50}, map[string]float64{"a": 0}, 0},
		{"equal weights", map[string]int{"frontend": 40, "backend": 70}, map[string]float64{"frontend": 1, "backend": 1}, 55},
		{"unweighted domain ignored", map[string]int{"a": 100, "b": 0}, map[string]float64{"a": 2}, 100},
		{"weighted mean rounds", map[string]int{"a": 90, "b": 60}, map[string]float64{"a": 1, "b": 2}, 70},
		{"weight for absent domain ignored", map[string]int{"a": 30}, map[string]float64{"a": 1, "z": 5}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedOverall(tt.scores, tt.weights); got != tt.want {
				t.Errorf("WeightedOverall() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeScores(t *testing.T) {
	got := NormalizeScores(map[string]any{"a": "12.7", "b": 300, "c": "x"})
	want := map[string]int{"a": 13, "b": 100, "c": 0}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("NormalizeScores()[%q] = %d, want %d", k, got[k], v)
		}
	}
}

func TestLevelOf_Defaults(t *testing.T) {
	tests := []struct {
		score int
		want  rules.Level
	}{
		{0, rules.Beginner},
		{59, rules.Beginner},
		{60, rules.Intermediate},
		{84, rules.Intermediate},
		{85, rules.Advanced},
		{100, rules.Advanced},
	}
	for _, tt := range tests {
		if got := LevelOf(tt.score, rules.LevelResolver{}); got != tt.want {
			t.Errorf("LevelOf(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestLevelOf_Overrides(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	overlapping := rules.LevelResolver{}
	overlapping.Default.Advanced = &rules.Band{Gte: f(50)}
	if got := LevelOf(70, overlapping); got != rules.Advanced {
		t.Errorf("overlapping bands: LevelOf(70) = %q, want advanced", got)
	}

	shifted := rules.LevelResolver{}
	shifted.Default.Advanced = &rules.Band{Gte: f(90)}
	shifted.Default.Intermediate = &rules.Band{Gte: f(70), Lt: f(90)}
	shifted.Default.Beginner = &rules.Band{Lt: f(70)}
	if got := LevelOf(85, shifted); got != rules.Intermediate {
		t.Errorf("shifted bands: LevelOf(85) = %q, want intermediate", got)
	}
	if got := LevelOf(65, shifted); got != rules.Beginner {
		t.Errorf("shifted bands: LevelOf(65) = %q, want beginner", got)
	}

	gap := rules.LevelResolver{}
	gap.Default.Advanced = &rules.Band{Gte: f(200)}
	gap.Default.Intermediate = &rules.Band{Gte: f(200)}
	gap.Default.Beginner = &rules.Band{Gte: f(200)}
	for score, want := range map[int]rules.Level{90: rules.Advanced, 70: rules.Intermediate, 10: rules.Beginner} {
		if got := LevelOf(score, gap); got != want {
			t.Errorf("no band matches: LevelOf(%d) = %q, want %q", score, got, want)
		}
	}
}
