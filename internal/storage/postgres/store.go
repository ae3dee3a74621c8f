// Package postgres is the server storage backend on PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/storage"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

var _ storage.Repository = (*Store)(nil)

// Store implements storage.Repository using PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store on an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to databaseURL, verifies the connection and applies the
// schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables and indexes. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateUser inserts a new user
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = $1
	`
	return s.scanUser(s.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = $1
	`
	return s.scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// CreateAssessment inserts an assessment
func (s *Store) CreateAssessment(ctx context.Context, a *domain.Assessment) error {
	scores, err := jsonObject(a.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	signals, err := jsonObject(a.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	query := `
		INSERT INTO assessments (id, user_id, scores, signals, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, a.ID, a.UserID, scores, signals, a.CreatedAt); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// GetAssessment retrieves one of the user's assessments
func (s *Store) GetAssessment(ctx context.Context, userID, id uuid.UUID) (*domain.Assessment, error) {
	query := `
		SELECT id, user_id, scores, signals, created_at
		FROM assessments WHERE id = $1 AND user_id = $2
	`
	a := &domain.Assessment{}
	var scores, signals []byte
	err := s.pool.QueryRow(ctx, query, id, userID).Scan(&a.ID, &a.UserID, &scores, &signals, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	if err := json.Unmarshal(scores, &a.Scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(signals, &a.Signals); err != nil {
		return nil, fmt.Errorf("unmarshal signals: %w", err)
	}
	return a, nil
}

// CreateEvaluation inserts an evaluation
func (s *Store) CreateEvaluation(ctx context.Context, e *domain.Evaluation) error {
	scores, err := json.Marshal(e.DomainScores)
	if err != nil {
		return fmt.Errorf("marshal domain scores: %w", err)
	}
	query := `
		INSERT INTO evaluations (id, user_id, assessment_id, domain_scores, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, e.ID, e.UserID, e.AssessmentID, scores, e.CreatedAt); err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetEvaluation retrieves one of the user's evaluations
func (s *Store) GetEvaluation(ctx context.Context, userID, id uuid.UUID) (*domain.Evaluation, error) {
	query := `
		SELECT id, user_id, assessment_id, domain_scores, created_at
		FROM evaluations WHERE id = $1 AND user_id = $2
	`
	return s.scanEvaluation(s.pool.QueryRow(ctx, query, id, userID))
}

// LatestEvaluation retrieves the user's most recent evaluation
func (s *Store) LatestEvaluation(ctx context.Context, userID uuid.UUID) (*domain.Evaluation, error) {
	query := `
		SELECT id, user_id, assessment_id, domain_scores, created_at
		FROM evaluations WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1
	`
	return s.scanEvaluation(s.pool.QueryRow(ctx, query, userID))
}

func (s *Store) scanEvaluation(row pgx.Row) (*domain.Evaluation, error) {
	e := &domain.Evaluation{}
	var scores []byte
	err := row.Scan(&e.ID, &e.UserID, &e.AssessmentID, &scores, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEvaluationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan evaluation: %w", err)
	}
	if err := json.Unmarshal(scores, &e.DomainScores); err != nil {
		return nil, fmt.Errorf("unmarshal domain scores: %w", err)
	}
	return e, nil
}

// CreatePlan inserts a plan
func (s *Store) CreatePlan(ctx context.Context, p *domain.Plan) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	advice, err := json.Marshal(p.Advice)
	if err != nil {
		return fmt.Errorf("marshal advice: %w", err)
	}
	query := `
		INSERT INTO plans (id, user_id, evaluation_id, items, advice, created_at, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.pool.Exec(ctx, query, p.ID, p.UserID, p.EvaluationID, items, advice, p.CreatedAt, p.StartedAt)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// GetPlan retrieves one of the user's plans
func (s *Store) GetPlan(ctx context.Context, userID, id uuid.UUID) (*domain.Plan, error) {
	query := `
		SELECT id, user_id, evaluation_id, items, advice, created_at, started_at
		FROM plans WHERE id = $1 AND user_id = $2
	`
	return s.scanPlan(s.pool.QueryRow(ctx, query, id, userID))
}

// LatestPlan retrieves the user's most recent plan
func (s *Store) LatestPlan(ctx context.Context, userID uuid.UUID) (*domain.Plan, error) {
	query := `
		SELECT id, user_id, evaluation_id, items, advice, created_at, started_at
		FROM plans WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1
	`
	return s.scanPlan(s.pool.QueryRow(ctx, query, userID))
}

// StartPlan records p.StartedAt
func (s *Store) StartPlan(ctx context.Context, p *domain.Plan) error {
	query := `UPDATE plans SET started_at = $1 WHERE id = $2 AND user_id = $3`
	tag, err := s.pool.Exec(ctx, query, p.StartedAt, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func (s *Store) scanPlan(row pgx.Row) (*domain.Plan, error) {
	p := &domain.Plan{}
	var items, advice []byte
	var started *time.Time
	err := row.Scan(&p.ID, &p.UserID, &p.EvaluationID, &items, &advice, &p.CreatedAt, &started)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(advice, &p.Advice); err != nil {
		return nil, fmt.Errorf("unmarshal advice: %w", err)
	}
	p.StartedAt = started
	return p, nil
}

// jsonObject encodes a JSONB object column, writing {} for nil maps.
func jsonObject(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
