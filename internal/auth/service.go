// Package auth registers users, checks their passwords and issues the bearer
// tokens that authenticate API requests.
package auth

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/events"
	"github.com/felixgeelhaar/skillquest/internal/storage"
)

// DefaultName is given to users who sign up without one.
const DefaultName = "User"

// Service handles authentication operations
type Service struct {
	users      storage.UserStore
	tokens     *TokenIssuer
	publisher  events.Publisher
	validate   *validator.Validate
	bcryptCost int
}

// NewService creates a new auth service. A nil publisher discards events.
func NewService(users storage.UserStore, tokens *TokenIssuer, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		publisher:  publisher,
		validate:   validator.New(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// RegisterRequest contains registration data
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates a new user account. The email is stored lower-cased and
// trimmed.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         cmp.Or(strings.TrimSpace(req.Name), DefaultName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	if err := s.publisher.Publish(ctx, events.New(events.UserRegistered, user.ID, user.ID, nil)); err != nil {
		slog.Warn("failed to publish event", "type", events.UserRegistered, "error", err)
	}
	return user, nil
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks the credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return "", err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

// Authenticate resolves a bearer token to the caller's claims.
func (s *Service) Authenticate(token string) (*domain.Claims, error) {
	return s.tokens.Verify(token)
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("%w: %s failed %s", domain.ErrInvalidInput, strings.ToLower(ve[0].Field()), ve[0].Tag())
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
