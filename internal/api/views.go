package api

import (
	"time"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/engine"
)

type assessmentView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Scores    map[string]any `json:"scores"`
	Signals   map[string]any `json:"signals"`
	CreatedAt time.Time      `json:"createdAt"`
}

func newAssessmentView(a *domain.Assessment) assessmentView {
	return assessmentView{
		ID:        a.ID.String(),
		UserID:    a.UserID.String(),
		Scores:    nonNilMap(a.Scores),
		Signals:   nonNilMap(a.Signals),
		CreatedAt: a.CreatedAt,
	}
}

// evaluationView omits userId inside /api/me/latest
type evaluationView struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId,omitempty"`
	AssessmentID string         `json:"assessmentId"`
	DomainScores map[string]int `json:"domainScores"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func newEvaluationView(e *domain.Evaluation, withUser bool) evaluationView {
	v := evaluationView{
		ID:           e.ID.String(),
		AssessmentID: e.AssessmentID.String(),
		DomainScores: e.DomainScores,
		CreatedAt:    e.CreatedAt,
	}
	if v.DomainScores == nil {
		v.DomainScores = map[string]int{}
	}
	if withUser {
		v.UserID = e.UserID.String()
	}
	return v
}

// planView omits userId inside /api/me/latest. startedAt is null until the
// plan is started.
type planView struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId,omitempty"`
	EvaluationID string        `json:"evaluationId"`
	Items        []engine.Item `json:"items"`
	CreatedAt    time.Time     `json:"createdAt"`
	StartedAt    *time.Time    `json:"startedAt"`
	Advice       []string      `json:"advice"`
}

func newPlanView(p *domain.Plan, withUser bool) planView {
	v := planView{
		ID:           p.ID.String(),
		EvaluationID: p.EvaluationID.String(),
		Items:        nonNilSlice(p.Items),
		CreatedAt:    p.CreatedAt,
		StartedAt:    p.StartedAt,
		Advice:       nonNilSlice(p.Advice),
	}
	if withUser {
		v.UserID = p.UserID.String()
	}
	return v
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
