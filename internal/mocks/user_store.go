package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. The default
// implementation keeps copies of users in memory, so callers never share a
// pointer with the "database".
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	DeleteFn     func(ctx context.Context, id int64) error

	// WithTxCalls counts how many times the store was bound to a transaction.
	WithTxCalls int

	mu     sync.Mutex
	users  map[int64]domain.User
	nextID int64
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store, optionally seeded with users.
// Seeded users without an ID are assigned one.
func NewMockUserStore(seed ...*domain.User) *MockUserStore {
	m := &MockUserStore{users: make(map[int64]domain.User)}
	for _, u := range seed {
		if err := m.create(u); err != nil {
			panic(err)
		}
	}
	return m
}

// WithTx implements store.UserStore. The mock ignores the transaction.
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	m.mu.Lock()
	m.WithTxCalls++
	m.mu.Unlock()
	return m
}

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return m.create(user)
}

func (m *MockUserStore) create(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.findByEmail(user.Email); taken {
		return store.ErrEmailExists
	}
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	} else if user.ID > m.nextID {
		m.nextID = user.ID
	}
	m.users[user.ID] = copyUser(*user)
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := copyUser(u)
	return &out, nil
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.findByEmail(email)
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := copyUser(u)
	return &out, nil
}

// Update implements store.UserStore.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if other, taken := m.findByEmail(user.Email); taken && other.ID != user.ID {
		return store.ErrEmailExists
	}
	m.users[user.ID] = copyUser(*user)
	return nil
}

// Delete implements store.UserStore.
func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// Len returns the number of stored users.
func (m *MockUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// findByEmail matches exactly, like the unique index. Callers hold mu.
func (m *MockUserStore) findByEmail(email string) (domain.User, bool) {
	for _, u := range m.users {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func copyUser(u domain.User) domain.User {
	if u.Phone != nil {
		p := *u.Phone
		u.Phone = &p
	}
	if u.Bio != nil {
		b := *u.Bio
		u.Bio = &b
	}
	if u.BirthDate != nil {
		d := *u.BirthDate
		u.BirthDate = &d
	}
	u.Password = ""
	return u
}
