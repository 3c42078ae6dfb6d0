package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/store"
)

// MockPrayerRequestStore implements store.PrayerRequestStore for testing.
// By default LockTicketSequence is a no-op and Create enforces ticket
// uniqueness the way the database constraint does.
type MockPrayerRequestStore struct {
	LockFn      func(ctx context.Context) error
	MaxTicketFn func(ctx context.Context) (int64, error)
	CreateFn    func(ctx context.Context, req *domain.PrayerRequest) error

	// LockCalls counts LockTicketSequence calls.
	LockCalls int

	mu       sync.Mutex
	requests []domain.PrayerRequest
}

var _ store.PrayerRequestStore = (*MockPrayerRequestStore)(nil)

// NewMockPrayerRequestStore creates a new mock store.
func NewMockPrayerRequestStore() *MockPrayerRequestStore {
	return &MockPrayerRequestStore{}
}

// WithTx implements store.PrayerRequestStore. The mock ignores the transaction.
func (m *MockPrayerRequestStore) WithTx(*sql.Tx) store.PrayerRequestStore {
	return m
}

// LockTicketSequence implements store.PrayerRequestStore.
func (m *MockPrayerRequestStore) LockTicketSequence(ctx context.Context) error {
	m.mu.Lock()
	m.LockCalls++
	m.mu.Unlock()
	if m.LockFn != nil {
		return m.LockFn(ctx)
	}
	return nil
}

// MaxTicket implements store.PrayerRequestStore.
func (m *MockPrayerRequestStore) MaxTicket(ctx context.Context) (int64, error) {
	if m.MaxTicketFn != nil {
		return m.MaxTicketFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var maxTicket int64
	for _, r := range m.requests {
		if r.Ticket > maxTicket {
			maxTicket = r.Ticket
		}
	}
	return maxTicket, nil
}

// Create implements store.PrayerRequestStore.
func (m *MockPrayerRequestStore) Create(ctx context.Context, req *domain.PrayerRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Ticket <= 0 {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidTicket)
	}
	for _, r := range m.requests {
		if r.Ticket == req.Ticket {
			return store.ErrDuplicateTicket
		}
	}
	req.ID = int64(len(m.requests) + 1)
	m.requests = append(m.requests, *req)
	return nil
}

// Requests returns a snapshot of the stored requests in insertion order.
func (m *MockPrayerRequestStore) Requests() []domain.PrayerRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PrayerRequest(nil), m.requests...)
}
