package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlinks/internal/account"
)

// UserMemoryStore is an in-memory implementation of account.Repository.
type UserMemoryStore struct {
	mu      sync.RWMutex
	users   map[string]account.User // id -> user
	byEmail map[string]string       // email key -> id
}

// NewUserMemoryStore creates a new in-memory user store.
func NewUserMemoryStore() *UserMemoryStore {
	return &UserMemoryStore{
		users:   make(map[string]account.User),
		byEmail: make(map[string]string),
	}
}

func (m *UserMemoryStore) Create(_ context.Context, user *account.User) error {
	key := account.EmailKey(user.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[key]; ok {
		return account.ErrEmailTaken
	}

	m.users[user.ID] = *user
	m.byEmail[key] = user.ID

	return nil
}

func (m *UserMemoryStore) GetByID(_ context.Context, id string) (*account.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, account.ErrNotFound
	}

	return &user, nil
}

func (m *UserMemoryStore) GetByEmail(_ context.Context, email string) (*account.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[account.EmailKey(email)]
	if !ok {
		return nil, account.ErrNotFound
	}

	user := m.users[id]

	return &user, nil
}

// Compile-time check.
var _ account.Repository = (*UserMemoryStore)(nil)
