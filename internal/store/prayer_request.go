package store

import (
	"context"
	"database/sql"

	"github.com/montesion/montesion-api/internal/domain"
)

// PrayerRequestStore defines the interface for prayer request persistence.
// Requests are append-only.
type PrayerRequestStore interface {
	// LockTicketSequence blocks until the caller holds the exclusive right to
	// allocate the next ticket. The lock is held until the surrounding
	// transaction ends, so it must be called through a store from WithTx.
	LockTicketSequence(ctx context.Context) error

	// MaxTicket returns the highest ticket issued so far, or 0 when there
	// are no requests.
	MaxTicket(ctx context.Context) (int64, error)

	// Create inserts a request that already has its ticket, and sets its ID.
	// Returns ErrDuplicateTicket if the ticket is already taken.
	Create(ctx context.Context, req *domain.PrayerRequest) error

	// WithTx returns a PrayerRequestStore bound to tx.
	WithTx(tx *sql.Tx) PrayerRequestStore
}
