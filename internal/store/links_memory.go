package store

import (
	"context"
	"slices"
	"sync"

	"github.com/serroba/shortlinks/internal/shortener"
)

// LinkMemoryStore is an in-memory implementation of shortener.Repository.
type LinkMemoryStore struct {
	mu      sync.RWMutex
	links   map[shortener.Code]shortener.ShortLink
	byOwner map[string][]shortener.Code // owner -> codes in insertion order
}

// NewLinkMemoryStore creates a new in-memory link store.
func NewLinkMemoryStore() *LinkMemoryStore {
	return &LinkMemoryStore{
		links:   make(map[shortener.Code]shortener.ShortLink),
		byOwner: make(map[string][]shortener.Code),
	}
}

func (m *LinkMemoryStore) Save(_ context.Context, link *shortener.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrCodeTaken
	}

	m.links[link.Code] = *link
	m.byOwner[link.OwnerID] = append(m.byOwner[link.OwnerID], link.Code)

	return nil
}

func (m *LinkMemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *LinkMemoryStore) UpdateURL(_ context.Context, code shortener.Code, ownerID, longURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok || link.OwnerID != ownerID {
		return shortener.ErrNotFound
	}

	link.LongURL = longURL
	m.links[code] = link

	return nil
}

func (m *LinkMemoryStore) Delete(_ context.Context, code shortener.Code, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok || link.OwnerID != ownerID {
		return shortener.ErrNotFound
	}

	delete(m.links, code)

	codes := slices.DeleteFunc(m.byOwner[ownerID], func(c shortener.Code) bool { return c == code })
	if len(codes) == 0 {
		delete(m.byOwner, ownerID)
	} else {
		m.byOwner[ownerID] = codes
	}

	return nil
}

func (m *LinkMemoryStore) ListByOwner(_ context.Context, ownerID string) ([]shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	codes := m.byOwner[ownerID]
	links := make([]shortener.ShortLink, 0, len(codes))

	for _, code := range codes {
		links = append(links, m.links[code])
	}

	return links, nil
}

// Compile-time check.
var _ shortener.Repository = (*LinkMemoryStore)(nil)
