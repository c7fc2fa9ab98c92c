package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements registration and authentication on top of a Repository.
type Service struct {
	store Repository
}

// NewService creates a credential service.
func NewService(store Repository) *Service {
	return &Service{store: store}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, ErrEmptyField
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate returns the user whose credentials match. Failures wrap ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrEmptyField
	}

	user, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		_ = VerifyPassword(dummyHash(), password)

		return nil, ErrUnknownEmail
	}

	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if len(password) > maxPasswordBytes {
		_ = VerifyPassword(dummyHash(), "")

		return nil, ErrWrongPassword
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrWrongPassword
	}

	return user, nil
}

// FindByEmail looks a user up by email, ignoring case.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.GetByEmail(ctx, email)
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	return s.store.GetByID(ctx, id)
}
