package store

import (
	"context"
	"log/slog"
	"sync"
)

// Memory is an in-process Store for tests and local development.
// All operations are safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]*User
	logger *slog.Logger
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]*User),
		logger: slog.Default(),
	}
}

// SetLogger sets a custom logger for the store.
func (m *Memory) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// FindByPhone returns a copy of the record for phone, or nil if none exists.
func (m *Memory) FindByPhone(_ context.Context, phone string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[phone]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// UpsertRefreshToken inserts or replaces the refresh token for phone.
func (m *Memory) UpsertRefreshToken(_ context.Context, phone, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[phone] = &User{Phone: phone, RefreshToken: refreshToken}
	m.logger.Debug("saved refresh token", "records", len(m.users))
	return nil
}

// Close implements Store. It is a no-op for the in-memory store.
func (m *Memory) Close() {}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
