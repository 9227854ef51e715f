package repository

import (
	"context"
	"sync"

	"github.com/prompty/notifier/internal/domain"
)

// MockContentRepository is an in-memory ContentRepository for tests.
type MockContentRepository struct {
	mu       sync.Mutex
	prompts  map[string]domain.PromptMeta
	profiles []mockProfile

	PromptMetaErr  error
	ProfileNameErr error
	ProfileIDsErr  error
}

type mockProfile struct {
	id          string
	displayName string
	username    string
}

func NewMockContentRepository() *MockContentRepository {
	return &MockContentRepository{prompts: make(map[string]domain.PromptMeta)}
}

func (m *MockContentRepository) AddPrompt(id, authorID, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts[id] = domain.PromptMeta{AuthorID: authorID, Title: title}
}

func (m *MockContentRepository) AddProfile(id, displayName, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, mockProfile{id: id, displayName: displayName, username: username})
}

func (m *MockContentRepository) PromptMeta(_ context.Context, promptID string) (*domain.PromptMeta, error) {
	if m.PromptMetaErr != nil {
		return nil, m.PromptMetaErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.prompts[promptID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &meta, nil
}

func (m *MockContentRepository) ProfileName(_ context.Context, userID string) (string, error) {
	if m.ProfileNameErr != nil {
		return "", m.ProfileNameErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.id == userID {
			if p.displayName != "" {
				return p.displayName, nil
			}
			return p.username, nil
		}
	}
	return "", domain.ErrNotFound
}

func (m *MockContentRepository) ProfileIDs(_ context.Context, limit int) ([]string, error) {
	if m.ProfileIDsErr != nil {
		return nil, m.ProfileIDsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, p := range m.profiles {
		if len(ids) == limit {
			break
		}
		ids = append(ids, p.id)
	}
	return ids, nil
}
