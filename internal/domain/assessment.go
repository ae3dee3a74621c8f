package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/engine"
)

// OverallKey is the entry of Evaluation.DomainScores holding the weighted
// overall score.
const OverallKey = "overall"

// Assessment is a user's raw skill scores and behavioral signals as
// submitted. Values are kept untouched; coercion happens at evaluation time.
type Assessment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Scores    map[string]any
	Signals   map[string]any
	CreatedAt time.Time
}

// Evaluation is the clamped per-domain scores derived from an assessment,
// plus the overall score under OverallKey.
type Evaluation struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AssessmentID uuid.UUID
	DomainScores map[string]int
	CreatedAt    time.Time
}

// PlanScores returns the domain scores as engine input. The overall entry is
// passed through like any other domain; it carries no weight unless the rule
// document assigns one.
func (e *Evaluation) PlanScores() map[string]any {
	out := make(map[string]any, len(e.DomainScores))
	for k, v := range e.DomainScores {
		out[k] = v
	}
	return out
}

// Plan is a persisted learning plan.
type Plan struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	EvaluationID uuid.UUID
	Items        []engine.Item
	Advice       []string
	CreatedAt    time.Time
	StartedAt    *time.Time
}

// IsStarted reports whether the user has started working through the plan.
func (p *Plan) IsStarted() bool {
	return p.StartedAt != nil
}
