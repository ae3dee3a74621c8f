package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Claims identify the caller of an authenticated request
type Claims struct {
	UserID uuid.UUID
	Email  string
}
