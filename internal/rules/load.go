package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed skill_eval_rules.yaml
var defaultDocument []byte

// Parse decodes a rule document. JSON documents are accepted as well since
// JSON is a subset of YAML.
func Parse(data []byte) (*Rules, error) {
	r := &Rules{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return r, nil
}

// Load reads and decodes the rule document at path.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

// Default returns the rule document bundled with the binary.
func Default() *Rules {
	r, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("bundled rules are invalid: %v", err))
	}
	return r
}

// DefaultDocument returns the raw bundled document, used by `rules init`.
func DefaultDocument() []byte {
	out := make([]byte, len(defaultDocument))
	copy(out, defaultDocument)
	return out
}

// Summary is a short description of a rule document.
type Summary struct {
	Domains         int `json:"domains"`
	Courses         int `json:"courses"`
	Resources       int `json:"resources"`
	Recommendations int `json:"recommendations"`
	Habits          int `json:"habits"`
	Weeks           int `json:"weeks"`
}

// Summarize counts the catalog and plan-builder entries of r.
func (r *Rules) Summarize() Summary {
	s := Summary{
		Domains:         len(r.Resources.Domains),
		Courses:         len(r.Resources.Courses),
		Recommendations: len(r.Recommendations),
		Habits:          len(r.PlanBuilder.WeeklyHabits),
		Weeks:           DefaultWeeks,
	}
	if r.PlanBuilder.Weeks != nil {
		s.Weeks = *r.PlanBuilder.Weeks
	}
	for _, levels := range r.Resources.Domains {
		for _, list := range levels {
			s.Resources += len(list)
		}
	}
	for _, list := range r.Resources.Courses {
		s.Resources += len(list)
	}
	return s
}
