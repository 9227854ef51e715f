package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prompty/notifier/internal/domain"
)

// MockDeviceTokenRepository is an in-memory DeviceTokenRepository for tests.
type MockDeviceTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.DeviceToken

	ActiveForUserErr error
	DeactivateErr    error
}

func NewMockDeviceTokenRepository() *MockDeviceTokenRepository {
	return &MockDeviceTokenRepository{tokens: make(map[string]*domain.DeviceToken)}
}

func (m *MockDeviceTokenRepository) Register(_ context.Context, token, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if t, ok := m.tokens[token]; ok {
		t.UserID = userID
		t.IsActive = true
		t.UpdatedAt = now
		return nil
	}
	m.tokens[token] = &domain.DeviceToken{
		Token: token, UserID: userID, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	return nil
}

func (m *MockDeviceTokenRepository) ActiveForUser(_ context.Context, userID string) ([]*domain.DeviceToken, error) {
	if m.ActiveForUserErr != nil {
		return nil, m.ActiveForUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.DeviceToken
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsActive {
			clone := *t
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Token < result[j].Token })
	return result, nil
}

func (m *MockDeviceTokenRepository) Deactivate(_ context.Context, token string) error {
	if m.DeactivateErr != nil {
		return m.DeactivateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		t.IsActive = false
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// Get returns the stored token, or nil.
func (m *MockDeviceTokenRepository) Get(token string) *domain.DeviceToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		clone := *t
		return &clone
	}
	return nil
}
