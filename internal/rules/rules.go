// Package rules models the declarative rule document that drives plan building:
// domain weights, score thresholds, resource catalogs, recommendations and
// weekly scheduling parameters.
//
// A *Rules value is treated as an immutable snapshot once it has been handed
// to the engine. Sections that are absent from the document decode to their
// zero value and the engine falls back to neutral defaults.
package rules

// Level is a proficiency tier derived from a domain score.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// DefaultWeeks is the plan length used when plan_builder.weeks is unset.
const DefaultWeeks = 4

// Rules is the parsed rule document.
type Rules struct {
	Weights         map[string]float64            `yaml:"weights"`
	Thresholds      map[string]map[string]float64 `yaml:"thresholds"`
	PlanBuilder     PlanBuilder                   `yaml:"plan_builder"`
	Resources       Resources                     `yaml:"resources"`
	Recommendations []Recommendation              `yaml:"recommendations"`
	SignalRules     SignalRules                   `yaml:"signals_rules"`
}

// PlanBuilder holds the weekly scheduling parameters.
type PlanBuilder struct {
	Weeks              *int               `yaml:"weeks"`
	PickCounts         map[string]int     `yaml:"pick_counts"`
	DomainPriority     []string           `yaml:"domain_priority"`
	WeeklyCap          *WeeklyCap         `yaml:"weekly_cap"`
	CourseRules        *CourseRules       `yaml:"course_rules"`
	WeeklyHabits       []Habit            `yaml:"weekly_habits"`
	SoftSkillsRoutines map[string][]Habit `yaml:"soft_skills_routines"`
	LevelResolver      LevelResolver      `yaml:"level_resolver"`
}

// WeeklyCap bounds how many resource items land in one week. Min is carried
// for compatibility with existing documents but is not enforced.
type WeeklyCap struct {
	Min *int `yaml:"min"`
	Max *int `yaml:"max"`
}

// CourseRules controls remediation for low course grades.
type CourseRules struct {
	Threshold     *float64 `yaml:"threshold"`
	PickPerCourse *int     `yaml:"pick_per_course"`
}

// Habit is a habit or routine action scheduled at a fixed week.
type Habit struct {
	Text string `yaml:"text"`
	Week int    `yaml:"week"`
}

// LevelResolver carries per-band overrides. A nil band keeps its default.
type LevelResolver struct {
	Default struct {
		Advanced     *Band `yaml:"advanced"`
		Intermediate *Band `yaml:"intermediate"`
		Beginner     *Band `yaml:"beginner"`
	} `yaml:"default"`
}

// Band is a half-open score interval [Gte, Lt). Either bound may be absent.
type Band struct {
	Gte *float64 `yaml:"gte"`
	Lt  *float64 `yaml:"lt"`
}

// Contains reports whether score falls inside the band.
func (b Band) Contains(score int) bool {
	s := float64(score)
	if b.Gte != nil && s < *b.Gte {
		return false
	}
	if b.Lt != nil && s >= *b.Lt {
		return false
	}
	return true
}

// Resources is the catalog: domain → level → entries, and course → entries.
type Resources struct {
	Domains map[string]map[Level][]Resource `yaml:"domains"`
	Courses map[string][]Resource           `yaml:"courses"`
}

// Resource is a read-only catalog entry.
type Resource struct {
	Title    string `yaml:"title" json:"title"`
	URL      string `yaml:"url" json:"url"`
	Provider string `yaml:"provider" json:"provider"`
	Type     string `yaml:"type" json:"type"`
	Est      string `yaml:"est" json:"est"`
}

// SignalRules configures the behavioral boosts applied during resource ranking.
type SignalRules struct {
	PrefersVideo     *TypeBoost    `yaml:"prefers_video"`
	LikesHandsOn     *TypeBoost    `yaml:"likes_hands_on"`
	TimePressureHigh *TimePressure `yaml:"time_pressure_high"`
}

// TypeBoost favours resources of the listed types when its signal is set.
type TypeBoost struct {
	Signal     string   `yaml:"signal"`
	BoostTypes []string `yaml:"boost_types"`
}

// TimePressure favours short resources when its signal is set.
type TimePressure struct {
	Signal              string   `yaml:"signal"`
	PreferEstUnderHours *float64 `yaml:"prefer_est_under_hours"`
}

// Recommendation pairs a condition with the advice shown when it holds.
type Recommendation struct {
	If   Condition
	Then string
}
