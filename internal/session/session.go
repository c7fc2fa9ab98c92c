// Package session issues opaque session tokens and resolves them to user ids.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned when a token does not resolve to a live session.
var ErrNoSession = errors.New("no session")

// Token is the opaque credential handed to the client.
type Token string

// Session binds a token to a user.
type Session struct {
	Token     Token     `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the session is past its expiry. A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, s Session) error

	// Get returns the session for token or ErrNoSession.
	Get(ctx context.Context, token Token) (*Session, error)

	// Delete removes the session. Deleting a missing token is not an error.
	Delete(ctx context.Context, token Token) error
}
