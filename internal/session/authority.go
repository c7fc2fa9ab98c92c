package session

import (
	"context"
	"errors"
	"time"
)

// Authority creates, resolves and destroys sessions.
type Authority struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewAuthority creates an Authority. A ttl of zero issues sessions that never expire.
func NewAuthority(store Store, ttl time.Duration) *Authority {
	return &Authority{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create opens a session for userID and returns its token.
func (a *Authority) Create(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, errors.New("session: missing user id")
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	s := Session{
		Token:  token,
		UserID: userID,
	}

	if a.ttl > 0 {
		s.ExpiresAt = a.now().Add(a.ttl).UTC()
	}

	if err := a.store.Create(ctx, s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Resolve returns the user id bound to token, or ErrNoSession.
func (a *Authority) Resolve(ctx context.Context, token Token) (string, error) {
	if !token.WellFormed() {
		return "", ErrNoSession
	}

	s, err := a.store.Get(ctx, token)
	if err != nil {
		return "", err
	}

	if s.Expired(a.now()) {
		_ = a.store.Delete(ctx, token)

		return "", ErrNoSession
	}

	return s.UserID, nil
}

// Destroy ends the session. It succeeds for unknown or malformed tokens.
func (a *Authority) Destroy(ctx context.Context, token Token) error {
	if !token.WellFormed() {
		return nil
	}

	return a.store.Delete(ctx, token)
}
