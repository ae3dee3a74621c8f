// Package learning runs the assessment → evaluation → plan workflow for
// authenticated users on top of the rule engine.
package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/engine"
	"github.com/felixgeelhaar/skillquest/internal/events"
	"github.com/felixgeelhaar/skillquest/internal/rules"
	"github.com/felixgeelhaar/skillquest/internal/storage"
)

// RulesSource yields the rule document in effect. *rules.Store satisfies it
// and swaps the document on reload.
type RulesSource interface {
	Current() *rules.Rules
}

// Service orchestrates assessments, evaluations and plans
type Service struct {
	store     storage.LearningStore
	rules     RulesSource
	publisher events.Publisher
	now       func() time.Time
}

// NewService creates a learning service. A nil publisher discards events.
func NewService(store storage.LearningStore, src RulesSource, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		store:     store,
		rules:     src,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateAssessment stores raw scores and signals as submitted. Scores must be
// present; signals may be nil.
func (s *Service) CreateAssessment(ctx context.Context, userID uuid.UUID, scores, signals map[string]any) (*domain.Assessment, error) {
	if scores == nil {
		return nil, fmt.Errorf("%w: scores are required", domain.ErrInvalidInput)
	}
	if signals == nil {
		signals = map[string]any{}
	}

	a := &domain.Assessment{
		ID:        uuid.New(),
		UserID:    userID,
		Scores:    scores,
		Signals:   signals,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.AssessmentSubmitted, userID, a.ID, map[string]any{
		"domains": len(scores),
	}))
	return a, nil
}

// GetAssessment returns one of the user's assessments
func (s *Service) GetAssessment(ctx context.Context, userID, id uuid.UUID) (*domain.Assessment, error) {
	return s.store.GetAssessment(ctx, userID, id)
}

// Evaluate clamps the assessment's scores and adds the weighted overall
// score under domain.OverallKey.
func (s *Service) Evaluate(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Evaluation, error) {
	a, err := s.store.GetAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	scores := engine.NormalizeScores(a.Scores)
	overall := engine.WeightedOverall(scores, s.rules.Current().Weights)
	scores[domain.OverallKey] = overall

	e := &domain.Evaluation{
		ID:           uuid.New(),
		UserID:       userID,
		AssessmentID: a.ID,
		DomainScores: scores,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateEvaluation(ctx, e); err != nil {
		return nil, err
	}

	slog.Info("evaluation created", "evaluation_id", e.ID, "user_id", userID, "overall", overall)
	s.publish(ctx, events.New(events.EvaluationCreated, userID, e.ID, map[string]any{
		"assessmentId": a.ID,
		"overall":      overall,
	}))
	return e, nil
}

// GetEvaluation returns one of the user's evaluations
func (s *Service) GetEvaluation(ctx context.Context, userID, id uuid.UUID) (*domain.Evaluation, error) {
	return s.store.GetEvaluation(ctx, userID, id)
}

// LatestEvaluation returns the user's most recent evaluation
func (s *Service) LatestEvaluation(ctx context.Context, userID uuid.UUID) (*domain.Evaluation, error) {
	return s.store.LatestEvaluation(ctx, userID)
}

// CreatePlan builds and stores a plan from an evaluation's scores and the
// signals of the assessment it came from. A missing assessment leaves the
// signals empty.
func (s *Service) CreatePlan(ctx context.Context, userID, evaluationID uuid.UUID) (*domain.Plan, error) {
	e, err := s.store.GetEvaluation(ctx, userID, evaluationID)
	if err != nil {
		return nil, err
	}

	signals := map[string]any{}
	a, err := s.store.GetAssessment(ctx, userID, e.AssessmentID)
	switch {
	case err == nil:
		signals = a.Signals
	case !errors.Is(err, domain.ErrAssessmentNotFound):
		return nil, err
	}

	built := engine.Build(e.PlanScores(), signals, s.rules.Current())

	p := &domain.Plan{
		ID:           uuid.New(),
		UserID:       userID,
		EvaluationID: e.ID,
		Items:        built.Items,
		Advice:       built.Advice,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreatePlan(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("plan created", "plan_id", p.ID, "user_id", userID, "items", len(p.Items), "advice", len(p.Advice))
	s.publish(ctx, events.New(events.PlanCreated, userID, p.ID, map[string]any{
		"evaluationId": e.ID,
		"items":        len(p.Items),
	}))
	return p, nil
}

// GetPlan returns one of the user's plans
func (s *Service) GetPlan(ctx context.Context, userID, id uuid.UUID) (*domain.Plan, error) {
	return s.store.GetPlan(ctx, userID, id)
}

// LatestPlan returns the user's most recent plan
func (s *Service) LatestPlan(ctx context.Context, userID uuid.UUID) (*domain.Plan, error) {
	return s.store.LatestPlan(ctx, userID)
}

// StartPlan stamps the plan's start time. Starting again moves the stamp.
func (s *Service) StartPlan(ctx context.Context, userID, id uuid.UUID) (*domain.Plan, error) {
	p, err := s.store.GetPlan(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.StartedAt = &now
	if err := s.store.StartPlan(ctx, p); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.PlanStarted, userID, p.ID, nil))
	return p, nil
}

// Snapshot is a user's most recent evaluation and plan. Either may be nil.
type Snapshot struct {
	Evaluation *domain.Evaluation
	Plan       *domain.Plan
}

// Latest returns the user's most recent evaluation and plan.
func (s *Service) Latest(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	var snap Snapshot

	e, err := s.store.LatestEvaluation(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrEvaluationNotFound) {
		return nil, err
	}
	snap.Evaluation = e

	p, err := s.store.LatestPlan(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrPlanNotFound) {
		return nil, err
	}
	snap.Plan = p

	return &snap, nil
}

// publish delivers e after the change is stored. Delivery failures are
// logged and never fail the request.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "event_id", e.ID, "type", e.Type, "error", err)
	}
}
