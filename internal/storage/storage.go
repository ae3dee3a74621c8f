// Package storage defines the persistence contract shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/skillquest/internal/domain"
)

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// LearningStore persists assessments, evaluations and plans. Every lookup is
// scoped to the owning user; a record owned by someone else is reported as
// not found.
type LearningStore interface {
	CreateAssessment(ctx context.Context, a *domain.Assessment) error
	GetAssessment(ctx context.Context, userID, id uuid.UUID) (*domain.Assessment, error)

	CreateEvaluation(ctx context.Context, e *domain.Evaluation) error
	GetEvaluation(ctx context.Context, userID, id uuid.UUID) (*domain.Evaluation, error)
	LatestEvaluation(ctx context.Context, userID uuid.UUID) (*domain.Evaluation, error)

	CreatePlan(ctx context.Context, p *domain.Plan) error
	GetPlan(ctx context.Context, userID, id uuid.UUID) (*domain.Plan, error)
	LatestPlan(ctx context.Context, userID uuid.UUID) (*domain.Plan, error)
	StartPlan(ctx context.Context, p *domain.Plan) error
}

// Repository is the full persistence surface used by the daemon.
type Repository interface {
	UserStore
	LearningStore
	Close() error
}
