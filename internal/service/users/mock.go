package users

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/janisto/codestats/internal/service/platforms"
)

// MockUserService implements Service in memory for unit tests.
type MockUserService struct {
	mu    sync.RWMutex
	users map[string]*User
	// Err, when set, is returned by every call.
	Err error
}

// NewMockUserService creates an empty mock.
func NewMockUserService() *MockUserService {
	return &MockUserService{users: make(map[string]*User)}
}

// Put stores a copy of u, replacing any existing record.
func (m *MockUserService) Put(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = cloneUser(u)
}

func (m *MockUserService) Get(_ context.Context, userID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *MockUserService) UpdateHandles(
	_ context.Context,
	userID string,
	changes map[platforms.Platform]string,
) (*User, error) {
	normalized, err := normalizeHandles(changes)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.Handles = applyHandles(u.Handles, normalized)
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func cloneUser(u *User) *User {
	c := *u
	c.Handles = maps.Clone(u.Handles)
	c.SolvedProblems = slices.Clone(u.SolvedProblems)
	return &c
}

// Compile-time interface check
var _ Service = (*MockUserService)(nil)
