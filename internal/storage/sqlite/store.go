package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/storage"
)

var _ storage.Repository = (*Store)(nil)

// Store implements storage.Repository on a migrated SQLite database.
type Store struct {
	db *DB
}

// NewStore creates a store on an already migrated database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// OpenStore opens the database at path, applies pending migrations and
// returns the store.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

// CreateUser inserts a new user. A taken email yields domain.ErrEmailExists.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// -----------------------------------------------------------------------------
// Assessments
// -----------------------------------------------------------------------------

// CreateAssessment persists the raw scores and signals as JSON.
func (s *Store) CreateAssessment(ctx context.Context, a *domain.Assessment) error {
	scores, err := marshalObject(a.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	signals, err := marshalObject(a.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, user_id, scores, signals, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, scores, signals, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// GetAssessment retrieves one of the user's assessments.
func (s *Store) GetAssessment(ctx context.Context, userID, id uuid.UUID) (*domain.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, scores, signals, created_at
		FROM assessments WHERE id = ? AND user_id = ?`, id, userID)

	var a domain.Assessment
	var scores, signals string
	if err := row.Scan(&a.ID, &a.UserID, &scores, &signals, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	if err := json.Unmarshal([]byte(scores), &a.Scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	if err := json.Unmarshal([]byte(signals), &a.Signals); err != nil {
		return nil, fmt.Errorf("unmarshal signals: %w", err)
	}
	return &a, nil
}

// -----------------------------------------------------------------------------
// Evaluations
// -----------------------------------------------------------------------------

// CreateEvaluation persists an evaluation.
func (s *Store) CreateEvaluation(ctx context.Context, e *domain.Evaluation) error {
	scores, err := json.Marshal(e.DomainScores)
	if err != nil {
		return fmt.Errorf("marshal domain scores: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, user_id, assessment_id, domain_scores, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.AssessmentID, string(scores), e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

const evaluationColumns = `id, user_id, assessment_id, domain_scores, created_at`

// GetEvaluation retrieves one of the user's evaluations.
func (s *Store) GetEvaluation(ctx context.Context, userID, id uuid.UUID) (*domain.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+`
		FROM evaluations WHERE id = ? AND user_id = ?`, id, userID)
	return scanEvaluation(row)
}

// LatestEvaluation retrieves the user's most recent evaluation.
func (s *Store) LatestEvaluation(ctx context.Context, userID uuid.UUID) (*domain.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+`
		FROM evaluations WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID)
	return scanEvaluation(row)
}

func scanEvaluation(row *sql.Row) (*domain.Evaluation, error) {
	var e domain.Evaluation
	var scores string
	if err := row.Scan(&e.ID, &e.UserID, &e.AssessmentID, &scores, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("scan evaluation: %w", err)
	}
	if err := json.Unmarshal([]byte(scores), &e.DomainScores); err != nil {
		return nil, fmt.Errorf("unmarshal domain scores: %w", err)
	}
	return &e, nil
}

// -----------------------------------------------------------------------------
// Plans
// -----------------------------------------------------------------------------

// CreatePlan persists a plan with its items and advice as JSON arrays.
func (s *Store) CreatePlan(ctx context.Context, p *domain.Plan) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	advice, err := json.Marshal(p.Advice)
	if err != nil {
		return fmt.Errorf("marshal advice: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, user_id, evaluation_id, items, advice, created_at, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.EvaluationID, string(items), string(advice),
		p.CreatedAt.UTC(), nullTime(p.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

const planColumns = `id, user_id, evaluation_id, items, advice, created_at, started_at`

// GetPlan retrieves one of the user's plans.
func (s *Store) GetPlan(ctx context.Context, userID, id uuid.UUID) (*domain.Plan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+`
		FROM plans WHERE id = ? AND user_id = ?`, id, userID)
	return scanPlan(row)
}

// LatestPlan retrieves the user's most recent plan.
func (s *Store) LatestPlan(ctx context.Context, userID uuid.UUID) (*domain.Plan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+`
		FROM plans WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID)
	return scanPlan(row)
}

// StartPlan records p.StartedAt.
func (s *Store) StartPlan(ctx context.Context, p *domain.Plan) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE plans SET started_at = ? WHERE id = ? AND user_id = ?",
		nullTime(p.StartedAt), p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func scanPlan(row *sql.Row) (*domain.Plan, error) {
	var p domain.Plan
	var items, advice string
	var started sql.NullTime
	if err := row.Scan(&p.ID, &p.UserID, &p.EvaluationID, &items, &advice, &p.CreatedAt, &started); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &p.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(advice), &p.Advice); err != nil {
		return nil, fmt.Errorf("unmarshal advice: %w", err)
	}
	if started.Valid {
		t := started.Time
		p.StartedAt = &t
	}
	return &p, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// marshalObject encodes a JSON object column, writing {} for nil maps.
func marshalObject(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
