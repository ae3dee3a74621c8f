package learning

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/engine"
	"github.com/felixgeelhaar/skillquest/internal/events"
	"github.com/felixgeelhaar/skillquest/internal/rules"
	"github.com/felixgeelhaar/skillquest/internal/storage/memory"
)

const testRules = `
weights: { frontend: 2, backend: 1 }
plan_builder:
  weeks: 2
  pick_counts: { beginner: 1, intermediate: 1, advanced: 1 }
  weekly_habits:
    - { text: "Review notes", week: 1 }
signals_rules:
  prefers_video: { boost_types: [video] }
resources:
  domains:
    frontend:
      beginner:
        - { title: "Read HTML", type: text }
        - { title: "Watch CSS", type: video }
recommendations:
  - if: { domain: frontend, lt: 60 }
    then: "Focus on frontend basics"
`

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	r, err := rules.Parse([]byte(testRules))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rec := &recorder{}
	s := NewService(memory.NewStore(), rules.NewStaticStore(r), rec)
	return s, rec
}

func TestService_Workflow(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestService(t)
	user := uuid.New()

	a, err := s.CreateAssessment(ctx, user,
		map[string]any{"frontend": 40, "backend": "100.4"},
		map[string]any{"prefers_video": true},
	)
	if err != nil {
		t.Fatalf("CreateAssessment() error = %v", err)
	}

	e, err := s.Evaluate(ctx, user, a.ID)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// (2*40 + 1*100) / 3 = 60
	want := map[string]int{"frontend": 40, "backend": 100, domain.OverallKey: 60}
	if diff := cmp.Diff(want, e.DomainScores); diff != "" {
		t.Errorf("DomainScores mismatch (-want +got):\n%s", diff)
	}

	p, err := s.CreatePlan(ctx, user, e.ID)
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	wantItems := []engine.Item{
		{Type: engine.ItemAction, Title: "Review notes", Week: 1},
		{Type: engine.ItemResource, Domain: "frontend", Title: "Watch CSS", ResType: "video", Week: 1},
	}
	if diff := cmp.Diff(wantItems, p.Items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Focus on frontend basics"}, p.Advice); diff != "" {
		t.Errorf("Advice mismatch (-want +got):\n%s", diff)
	}
	if p.EvaluationID != e.ID || p.IsStarted() {
		t.Errorf("CreatePlan() = %+v", p)
	}

	started, err := s.StartPlan(ctx, user, p.ID)
	if err != nil {
		t.Fatalf("StartPlan() error = %v", err)
	}
	if !started.IsStarted() {
		t.Error("StartPlan() should set StartedAt")
	}

	snap, err := s.Latest(ctx, user)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if snap.Evaluation.ID != e.ID || snap.Plan.ID != p.ID || !snap.Plan.IsStarted() {
		t.Errorf("Latest() = %+v", snap)
	}

	wantEvents := []events.Type{events.AssessmentSubmitted, events.EvaluationCreated, events.PlanCreated, events.PlanStarted}
	if diff := cmp.Diff(wantEvents, rec.types()); diff != "" {
		t.Errorf("published events mismatch (-want +got):\n%s", diff)
	}
}

func TestService_CreateAssessment_RequiresScores(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.CreateAssessment(context.Background(), uuid.New(), nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("CreateAssessment(nil) error = %v, want ErrInvalidInput", err)
	}
}

func TestService_CreateAssessment_DefaultsSignals(t *testing.T) {
	s, _ := newTestService(t)
	a, err := s.CreateAssessment(context.Background(), uuid.New(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("CreateAssessment() error = %v", err)
	}
	if a.Signals == nil {
		t.Error("Signals should default to an empty map")
	}
}

func TestService_ScopedToUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	owner, stranger := uuid.New(), uuid.New()

	a, _ := s.CreateAssessment(ctx, owner, map[string]any{"frontend": 10}, nil)

	if _, err := s.Evaluate(ctx, stranger, a.ID); !errors.Is(err, domain.ErrAssessmentNotFound) {
		t.Errorf("Evaluate(stranger) error = %v, want ErrAssessmentNotFound", err)
	}

	e, err := s.Evaluate(ctx, owner, a.ID)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if _, err := s.CreatePlan(ctx, stranger, e.ID); !errors.Is(err, domain.ErrEvaluationNotFound) {
		t.Errorf("CreatePlan(stranger) error = %v, want ErrEvaluationNotFound", err)
	}
	if _, err := s.StartPlan(ctx, owner, uuid.New()); !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("StartPlan(missing) error = %v, want ErrPlanNotFound", err)
	}
}

func TestService_Latest_Empty(t *testing.T) {
	s, _ := newTestService(t)
	snap, err := s.Latest(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if snap.Evaluation != nil || snap.Plan != nil {
		t.Errorf("Latest() = %+v, want empty snapshot", snap)
	}
}

func TestService_PublishFailureDoesNotFail(t *testing.T) {
	s, rec := newTestService(t)
	rec.err = errors.New("broker down")

	if _, err := s.CreateAssessment(context.Background(), uuid.New(), map[string]any{"x": 1}, nil); err != nil {
		t.Errorf("CreateAssessment() error = %v, want nil when publishing fails", err)
	}
}

func TestService_UsesCurrentRules(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	src := &swapSource{}
	src.set(`weights: { a: 1 }`)
	s := NewService(store, src, nil)
	user := uuid.New()

	a, _ := s.CreateAssessment(ctx, user, map[string]any{"a": 80, "b": 20}, nil)
	e, _ := s.Evaluate(ctx, user, a.ID)
	if e.DomainScores[domain.OverallKey] != 80 {
		t.Errorf("overall = %d, want 80", e.DomainScores[domain.OverallKey])
	}

	src.set(`weights: { a: 1, b: 1 }`)
	e, _ = s.Evaluate(ctx, user, a.ID)
	if e.DomainScores[domain.OverallKey] != 50 {
		t.Errorf("overall after swap = %d, want 50", e.DomainScores[domain.OverallKey])
	}
}

type swapSource struct {
	mu sync.Mutex
	r  *rules.Rules
}

func (s *swapSource) set(doc string) {
	r, err := rules.Parse([]byte(doc))
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.r = r
	s.mu.Unlock()
}

func (s *swapSource) Current() *rules.Rules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r
}

func TestService_Timestamps(t *testing.T) {
	s, _ := newTestService(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	a, _ := s.CreateAssessment(context.Background(), uuid.New(), map[string]any{}, nil)
	if !a.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", a.CreatedAt, fixed)
	}
}
