package store

import (
	"context"
	"database/sql"

	"github.com/montesion/montesion-api/internal/domain"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	// Create inserts a new user and sets its ID. The user must already carry
	// a hashed password. Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by exact (case-sensitive) email match.
	// Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update overwrites the profile fields and password hash of an existing
	// user. Returns ErrUserNotFound if the user does not exist and
	// ErrEmailExists if the new email belongs to another account.
	Update(ctx context.Context, user *domain.User) error

	// Delete permanently removes a user. Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a UserStore bound to tx, so several calls can share
	// the caller's transaction.
	WithTx(tx *sql.Tx) UserStore
}
