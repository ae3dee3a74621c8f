package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/engine"
)

func TestStore_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u := &domain.User{ID: uuid.New(), Email: "a@example.com"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := s.CreateUser(ctx, &domain.User{ID: uuid.New(), Email: "a@example.com"}); !errors.Is(err, domain.ErrEmailExists) {
		t.Errorf("CreateUser(duplicate) error = %v, want ErrEmailExists", err)
	}
	if _, err := s.GetUserByID(ctx, uuid.New()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestStore_ScopedToUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner, stranger := uuid.New(), uuid.New()

	a := &domain.Assessment{ID: uuid.New(), UserID: owner, Scores: map[string]any{"x": 1}}
	s.CreateAssessment(ctx, a)

	if _, err := s.GetAssessment(ctx, stranger, a.ID); !errors.Is(err, domain.ErrAssessmentNotFound) {
		t.Errorf("GetAssessment(stranger) error = %v, want ErrAssessmentNotFound", err)
	}

	got, err := s.GetAssessment(ctx, owner, a.ID)
	if err != nil {
		t.Fatalf("GetAssessment() error = %v", err)
	}
	got.Scores["x"] = 99
	again, _ := s.GetAssessment(ctx, owner, a.ID)
	if again.Scores["x"] != 1 {
		t.Error("GetAssessment() result aliases stored data")
	}
}

func TestStore_LatestIsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()

	if _, err := s.LatestPlan(ctx, user); !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("LatestPlan(empty) error = %v, want ErrPlanNotFound", err)
	}

	var last uuid.UUID
	for i := 0; i < 3; i++ {
		p := &domain.Plan{ID: uuid.New(), UserID: user, Items: []engine.Item{{Title: "x"}}}
		s.CreatePlan(ctx, p)
		last = p.ID
	}
	s.CreatePlan(ctx, &domain.Plan{ID: uuid.New(), UserID: uuid.New()})

	got, err := s.LatestPlan(ctx, user)
	if err != nil {
		t.Fatalf("LatestPlan() error = %v", err)
	}
	if got.ID != last {
		t.Errorf("LatestPlan().ID = %v, want %v", got.ID, last)
	}

	now := time.Now()
	got.StartedAt = &now
	if err := s.StartPlan(ctx, got); err != nil {
		t.Fatalf("StartPlan() error = %v", err)
	}
	started, _ := s.GetPlan(ctx, user, last)
	if !started.IsStarted() {
		t.Error("plan should be started")
	}
}
