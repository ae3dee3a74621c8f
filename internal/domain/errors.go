package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by repositories
// and services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Token errors
var (
	ErrTokenMissing = errors.New("missing authorization")
	ErrTokenInvalid = errors.New("invalid token")
)

// Assessment errors
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// Evaluation errors
var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
)

// Plan errors
var (
	ErrPlanNotFound = errors.New("plan not found")
)

// General errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
