package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlinks/internal/session"
)

// SessionMemoryStore is an in-memory implementation of session.Store.
type SessionMemoryStore struct {
	mu       sync.RWMutex
	sessions map[session.Token]session.Session
}

// NewSessionMemoryStore creates a new in-memory session store.
func NewSessionMemoryStore() *SessionMemoryStore {
	return &SessionMemoryStore{
		sessions: make(map[session.Token]session.Session),
	}
}

func (m *SessionMemoryStore) Create(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Token] = s

	return nil
}

func (m *SessionMemoryStore) Get(_ context.Context, token session.Token) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrNoSession
	}

	return &s, nil
}

func (m *SessionMemoryStore) Delete(_ context.Context, token session.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)

	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *SessionMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Compile-time check.
var _ session.Store = (*SessionMemoryStore)(nil)
