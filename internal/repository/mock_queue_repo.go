package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prompty/notifier/internal/domain"
)

// MockQueueRepository is a hand-written, in-memory implementation of
// QueueRepository used in unit tests. No mock-generation library needed.
type MockQueueRepository struct {
	mu    sync.Mutex
	items map[string]*domain.QueueItem

	// ClaimLease mirrors the pg implementation's lease: claims older than
	// this become claimable again. Zero means claims never expire.
	ClaimLease time.Duration

	// Optional error overrides — set in tests to simulate failure paths.
	ClaimBatchErr    error
	MarkProcessedErr error
}

func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{items: make(map[string]*domain.QueueItem)}
}

// Add seeds the mock with a queue row.
func (m *MockQueueRepository) Add(item *domain.QueueItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *item
	m.items[item.ID] = &clone
}

func (m *MockQueueRepository) ClaimBatch(_ context.Context, workerID string, limit int) ([]*domain.QueueItem, error) {
	if m.ClaimBatchErr != nil {
		return nil, m.ClaimBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().UTC().Add(-m.ClaimLease)
	var pending []*domain.QueueItem
	for _, item := range m.items {
		if item.Processed {
			continue
		}
		if item.ClaimedAt == nil || (m.ClaimLease > 0 && item.ClaimedAt.Before(cutoff)) {
			pending = append(pending, item)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	now := time.Now().UTC()
	result := make([]*domain.QueueItem, len(pending))
	for i, item := range pending {
		item.ClaimedAt = &now
		item.WorkerID = &workerID
		clone := *item
		result[i] = &clone
	}
	return result, nil
}

func (m *MockQueueRepository) MarkProcessed(_ context.Context, id string, errMsg *string) error {
	if m.MarkProcessedErr != nil {
		return m.MarkProcessedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		now := time.Now().UTC()
		item.Processed = true
		item.ProcessedAt = &now
		item.ErrorMessage = errMsg
	}
	return nil
}

func (m *MockQueueRepository) Stats(_ context.Context) (*domain.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s domain.QueueStats
	for _, item := range m.items {
		if item.Processed {
			s.Processed++
		} else {
			s.Pending++
		}
	}
	return &s, nil
}

// Get returns the stored row by ID, or nil.
func (m *MockQueueRepository) Get(id string) *domain.QueueItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		clone := *item
		return &clone
	}
	return nil
}
