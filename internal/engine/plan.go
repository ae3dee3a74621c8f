package engine

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/felixgeelhaar/skillquest/internal/rules"
)

// Plan builder defaults used when the rule document leaves a value unset.
const (
	defaultMinCap        = 3
	defaultMaxCap        = 6
	defaultPickCount     = 2
	defaultCourseCutoff  = 60
	defaultPickPerCourse = 2
	defaultSoftSkillBar  = 60.0
)

var defaultPickCounts = map[string]int{
	string(rules.Beginner):     3,
	string(rules.Intermediate): 2,
	string(rules.Advanced):     2,
}

// Plan is the result of one Build call.
type Plan struct {
	Overall int                    `json:"overall"`
	Levels  map[string]rules.Level `json:"levels"`
	Items   []Item                 `json:"items"`
	Advice  []string               `json:"advice"`
}

// Build assembles a plan for the given raw scores and signals.
//
// Weakest domains are processed first so their resources claim the early
// weeks. Resource items are spread over the weeks by Distribute; habit and
// routine actions keep their configured week. The returned items are sorted
// by (week, type, domain, title).
func Build(rawScores, signals map[string]any, r *rules.Rules) Plan {
	if r == nil {
		r = &rules.Rules{}
	}
	pb := r.PlanBuilder

	scores := NormalizeScores(rawScores)
	overall := WeightedOverall(scores, r.Weights)

	levels := make(map[string]rules.Level, len(scores))
	for d, s := range scores {
		levels[d] = LevelOf(s, pb.LevelResolver)
	}

	weeks := rules.DefaultWeeks
	if pb.Weeks != nil {
		weeks = *pb.Weeks
	}
	if weeks < 1 {
		weeks = 1
	}

	pickCounts := pb.PickCounts
	if pickCounts == nil {
		pickCounts = defaultPickCounts
	}

	minCap, maxCap := defaultMinCap, defaultMaxCap
	if wc := pb.WeeklyCap; wc != nil {
		if wc.Min != nil {
			minCap = *wc.Min
		}
		if wc.Max != nil {
			maxCap = *wc.Max
		}
	}

	var items []Item

	// Domain resources, weakest first. Equal scores keep priority order.
	priority := slices.Clone(pb.DomainPriority)
	if pb.DomainPriority == nil {
		priority = slices.Sorted(maps.Keys(scores))
	}
	slices.SortStableFunc(priority, func(a, b string) int {
		return cmp.Compare(scores[a], scores[b])
	})
	for _, d := range priority {
		lvl, ok := levels[d]
		if !ok {
			lvl = rules.Beginner
		}
		need, ok := pickCounts[string(lvl)]
		if !ok {
			need = defaultPickCount
		}
		for _, res := range Pick(d, lvl, r, need, signals) {
			it := resourceItem(res)
			it.Domain = d
			items = append(items, it)
		}
	}

	items = append(items, courseItems(r, signals)...)

	for _, h := range pb.WeeklyHabits {
		items = append(items, Item{Type: ItemAction, Title: h.Text, Week: h.Week})
	}

	// Soft-skill routines are gated on the flat thresholds section, not on
	// the level resolver bands.
	for _, d := range slices.Sorted(maps.Keys(pb.SoftSkillsRoutines)) {
		bar := defaultSoftSkillBar
		if v, ok := r.Thresholds[d][string(rules.Intermediate)]; ok {
			bar = v
		}
		if float64(scores[d]) >= bar {
			continue
		}
		for _, a := range pb.SoftSkillsRoutines[d] {
			items = append(items, Item{Type: ItemAction, Domain: d, Title: a.Text, Week: a.Week})
		}
	}

	var resources, actions []Item
	for _, it := range items {
		if it.Type == ItemResource {
			resources = append(resources, it)
		} else {
			actions = append(actions, it)
		}
	}

	out := Distribute(resources, weeks, minCap, maxCap)
	for _, a := range actions {
		a.Week = min(max(a.Week, 1), weeks)
		out = append(out, a)
	}

	slices.SortStableFunc(out, compareItems)

	return Plan{
		Overall: overall,
		Levels:  levels,
		Items:   out,
		Advice:  Advice(r.Recommendations, scores),
	}
}

// courseItems returns remediation resources for every course whose grade in
// signals.course_grades falls below the cutoff.
func courseItems(r *rules.Rules, signals map[string]any) []Item {
	cutoff, perCourse := defaultCourseCutoff, defaultPickPerCourse
	if cr := r.PlanBuilder.CourseRules; cr != nil {
		if cr.Threshold != nil {
			cutoff = int(*cr.Threshold)
		}
		if cr.PickPerCourse != nil {
			perCourse = max(*cr.PickPerCourse, 0)
		}
	}

	raw, _ := Lookup(signals, "course_grades")
	grades, ok := asMap(raw)
	if !ok {
		return nil
	}

	var items []Item
	for _, course := range slices.Sorted(maps.Keys(grades)) {
		catalog, ok := r.Resources.Courses[course]
		if !ok || Clamp(grades[course]) >= cutoff {
			continue
		}
		for _, res := range catalog[:min(perCourse, len(catalog))] {
			it := resourceItem(res)
			it.Course = course
			items = append(items, it)
		}
	}
	return items
}

func compareItems(a, b Item) int {
	return cmp.Or(
		cmp.Compare(a.Week, b.Week),
		strings.Compare(string(a.Type), string(b.Type)),
		strings.Compare(a.Domain, b.Domain),
		strings.Compare(a.Title, b.Title),
	)
}
