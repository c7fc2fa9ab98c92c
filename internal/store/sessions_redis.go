package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/session"
)

// SessionRedisStore is a Redis implementation of session.Store.
// Sessions with an expiry are stored with a matching key TTL.
type SessionRedisStore struct {
	client *redis.Client
	prefix string
}

// NewSessionRedisStore creates a Redis-backed session store.
func NewSessionRedisStore(client *redis.Client) *SessionRedisStore {
	return &SessionRedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *SessionRedisStore) key(token session.Token) string {
	return r.prefix + string(token)
}

func (r *SessionRedisStore) Create(ctx context.Context, s session.Session) error {
	if s.Token == "" || s.UserID == "" {
		return errors.New("session: missing token or user id")
	}

	var ttl time.Duration

	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return errors.New("session: expires_at must be in the future")
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(s.Token), data, ttl).Err()
}

func (r *SessionRedisStore) Get(ctx context.Context, token session.Token) (*session.Session, error) {
	val, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNoSession
		}

		return nil, err
	}

	var s session.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return &s, nil
}

func (r *SessionRedisStore) Delete(ctx context.Context, token session.Token) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

// Compile-time check.
var _ session.Store = (*SessionRedisStore)(nil)
