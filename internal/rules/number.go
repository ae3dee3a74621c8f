package rules

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// number decodes any scalar that reads as a number: plain ints and floats,
// quoted numerals and booleans. Anything else leaves it unset rather than
// failing the whole document.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalYAML(node *yaml.Node) error {
	n.value, n.set = scalarFloat(node)
	return nil
}

func (n number) floatPtr() *float64 {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}

// intPtr truncates toward zero.
func (n number) intPtr() *int {
	if !n.set || math.Abs(n.value) > math.MaxInt32 {
		return nil
	}
	v := int(n.value)
	return &v
}

func (n number) intValue() int {
	if p := n.intPtr(); p != nil {
		return *p
	}
	return 0
}

func scalarFloat(node *yaml.Node) (float64, bool) {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return 0, false
	}
	if node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return 0, false
		}
		if b {
			return 1, true
		}
		return 0, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func intMap(raw map[string]number) map[string]int {
	if raw == nil {
		return nil
	}
	out := make(map[string]int, len(raw))
	for k, n := range raw {
		if p := n.intPtr(); p != nil {
			out[k] = *p
		}
	}
	return out
}

func floatMap(raw map[string]number) map[string]float64 {
	if raw == nil {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, n := range raw {
		if n.set {
			out[k] = n.value
		}
	}
	return out
}

// UnmarshalYAML decodes the document with lenient numeric fields.
func (r *Rules) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Weights         map[string]number            `yaml:"weights"`
		Thresholds      map[string]map[string]number `yaml:"thresholds"`
		PlanBuilder     PlanBuilder                  `yaml:"plan_builder"`
		Resources       Resources                    `yaml:"resources"`
		Recommendations []Recommendation             `yaml:"recommendations"`
		SignalRules     SignalRules                  `yaml:"signals_rules"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*r = Rules{
		Weights:         floatMap(raw.Weights),
		PlanBuilder:     raw.PlanBuilder,
		Resources:       raw.Resources,
		Recommendations: raw.Recommendations,
		SignalRules:     raw.SignalRules,
	}
	if raw.Thresholds != nil {
		r.Thresholds = make(map[string]map[string]float64, len(raw.Thresholds))
		for domain, levels := range raw.Thresholds {
			r.Thresholds[domain] = floatMap(levels)
		}
	}
	return nil
}

func (p *PlanBuilder) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Weeks              number             `yaml:"weeks"`
		PickCounts         map[string]number  `yaml:"pick_counts"`
		DomainPriority     []string           `yaml:"domain_priority"`
		WeeklyCap          *WeeklyCap         `yaml:"weekly_cap"`
		CourseRules        *CourseRules       `yaml:"course_rules"`
		WeeklyHabits       []Habit            `yaml:"weekly_habits"`
		SoftSkillsRoutines map[string][]Habit `yaml:"soft_skills_routines"`
		LevelResolver      LevelResolver      `yaml:"level_resolver"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*p = PlanBuilder{
		Weeks:              raw.Weeks.intPtr(),
		PickCounts:         intMap(raw.PickCounts),
		DomainPriority:     raw.DomainPriority,
		WeeklyCap:          raw.WeeklyCap,
		CourseRules:        raw.CourseRules,
		WeeklyHabits:       raw.WeeklyHabits,
		SoftSkillsRoutines: raw.SoftSkillsRoutines,
		LevelResolver:      raw.LevelResolver,
	}
	return nil
}

func (c *WeeklyCap) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Min number `yaml:"min"`
		Max number `yaml:"max"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*c = WeeklyCap{Min: raw.Min.intPtr(), Max: raw.Max.intPtr()}
	return nil
}

func (c *CourseRules) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Threshold     number `yaml:"threshold"`
		PickPerCourse number `yaml:"pick_per_course"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*c = CourseRules{Threshold: raw.Threshold.floatPtr(), PickPerCourse: raw.PickPerCourse.intPtr()}
	return nil
}

func (h *Habit) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Text string `yaml:"text"`
		Week number `yaml:"week"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*h = Habit{Text: raw.Text, Week: raw.Week.intValue()}
	return nil
}

func (b *Band) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Gte number `yaml:"gte"`
		Lt  number `yaml:"lt"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*b = Band{Gte: raw.Gte.floatPtr(), Lt: raw.Lt.floatPtr()}
	return nil
}

func (t *TimePressure) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Signal              string `yaml:"signal"`
		PreferEstUnderHours number `yaml:"prefer_est_under_hours"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = TimePressure{Signal: raw.Signal, PreferEstUnderHours: raw.PreferEstUnderHours.floatPtr()}
	return nil
}
