// Package userstore provides clinician account storage for authentication.
// It has SQLite and PostgreSQL backends behind one interface.
package userstore

import (
	"context"
	"time"
)

// Role represents a user's access role.
type Role string

const (
	RoleClinician Role = "clinician"
	RoleAdmin     Role = "admin"
)

// User represents a registered clinician account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines the interface for user account storage operations.
type Store interface {
	// Create stores a new user account. The username must be unique.
	Create(ctx context.Context, user *User) error

	// GetByUsername retrieves a user by username.
	// Returns nil without error when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID retrieves a user by ID.
	// Returns nil without error when the user does not exist.
	GetByID(ctx context.Context, id string) (*User, error)

	// Count returns the total number of registered users.
	Count(ctx context.Context) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}
