// Package account registers users and verifies their credentials.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyField = errors.New("email and password cannot be empty")
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = errors.New("user not found")

	// ErrInvalidCredentials is the error callers outside this package should
	// report for a failed login, whichever of its causes below occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownEmail       = fmt.Errorf("%w: unknown email", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository stores users.
type Repository interface {
	// Create stores a new user. It fails with ErrEmailTaken when a user with
	// the same EmailKey already exists.
	Create(ctx context.Context, user *User) error

	// GetByID returns the user or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail looks the user up by EmailKey(email). Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// EmailKey is the form emails are compared in: trimmed and lower-cased.
// Users keep the address as they typed it.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
