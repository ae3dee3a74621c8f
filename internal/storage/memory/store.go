// Package memory is a process-local storage backend. Nothing survives a
// restart; it backs tests and the daemon's ephemeral mode.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/storage"
)

var _ storage.Repository = (*Store)(nil)

// Store provides thread-safe in-memory storage
type Store struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]domain.User
	assessments map[uuid.UUID]domain.Assessment
	evaluations []domain.Evaluation
	plans       []domain.Plan
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]domain.User),
		assessments: make(map[uuid.UUID]domain.Assessment),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateUser stores a user. Emails are unique.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// CreateAssessment stores an assessment
func (s *Store) CreateAssessment(_ context.Context, a *domain.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	cp.Scores = maps.Clone(a.Scores)
	cp.Signals = maps.Clone(a.Signals)
	s.assessments[a.ID] = cp
	return nil
}

// GetAssessment retrieves one of the user's assessments
func (s *Store) GetAssessment(_ context.Context, userID, id uuid.UUID) (*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assessments[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAssessmentNotFound
	}
	a.Scores = maps.Clone(a.Scores)
	a.Signals = maps.Clone(a.Signals)
	return &a, nil
}

// CreateEvaluation stores an evaluation
func (s *Store) CreateEvaluation(_ context.Context, e *domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	cp.DomainScores = maps.Clone(e.DomainScores)
	s.evaluations = append(s.evaluations, cp)
	return nil
}

// GetEvaluation retrieves one of the user's evaluations
func (s *Store) GetEvaluation(_ context.Context, userID, id uuid.UUID) (*domain.Evaluation, error) {
	return s.findEvaluation(func(e domain.Evaluation) bool {
		return e.ID == id && e.UserID == userID
	})
}

// LatestEvaluation retrieves the user's most recent evaluation
func (s *Store) LatestEvaluation(_ context.Context, userID uuid.UUID) (*domain.Evaluation, error) {
	return s.findEvaluation(func(e domain.Evaluation) bool {
		return e.UserID == userID
	})
}

// findEvaluation scans newest first. Records are appended in creation order.
func (s *Store) findEvaluation(match func(domain.Evaluation) bool) (*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range slices.Backward(s.evaluations) {
		if match(e) {
			e.DomainScores = maps.Clone(e.DomainScores)
			return &e, nil
		}
	}
	return nil, domain.ErrEvaluationNotFound
}

// CreatePlan stores a plan
func (s *Store) CreatePlan(_ context.Context, p *domain.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = append(s.plans, clonePlan(*p))
	return nil
}

// GetPlan retrieves one of the user's plans
func (s *Store) GetPlan(_ context.Context, userID, id uuid.UUID) (*domain.Plan, error) {
	return s.findPlan(func(p domain.Plan) bool {
		return p.ID == id && p.UserID == userID
	})
}

// LatestPlan retrieves the user's most recent plan
func (s *Store) LatestPlan(_ context.Context, userID uuid.UUID) (*domain.Plan, error) {
	return s.findPlan(func(p domain.Plan) bool {
		return p.UserID == userID
	})
}

// StartPlan records p.StartedAt
func (s *Store) StartPlan(_ context.Context, p *domain.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.plans {
		if s.plans[i].ID == p.ID && s.plans[i].UserID == p.UserID {
			if p.StartedAt != nil {
				t := *p.StartedAt
				s.plans[i].StartedAt = &t
			}
			return nil
		}
	}
	return domain.ErrPlanNotFound
}

func (s *Store) findPlan(match func(domain.Plan) bool) (*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range slices.Backward(s.plans) {
		if match(p) {
			cp := clonePlan(p)
			return &cp, nil
		}
	}
	return nil, domain.ErrPlanNotFound
}

func clonePlan(p domain.Plan) domain.Plan {
	p.Items = slices.Clone(p.Items)
	p.Advice = slices.Clone(p.Advice)
	if p.StartedAt != nil {
		t := *p.StartedAt
		p.StartedAt = &t
	}
	return p
}
