package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/store"
)

// ticketLockKey identifies the transaction-scoped advisory lock guarding
// ticket allocation. Any constant works as long as nothing else uses it.
const ticketLockKey int64 = 0x4d6f6e7465 // "Monte"

// PostgresPrayerRequestStore implements the store.PrayerRequestStore
// interface using a PostgreSQL database as the storage backend.
type PostgresPrayerRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPrayerRequestStore creates a new PostgreSQL implementation of
// the PrayerRequestStore interface. If logger is nil, the default logger is used.
func NewPostgresPrayerRequestStore(db store.DBTX, logger *slog.Logger) *PostgresPrayerRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPrayerRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "prayer_request_store")),
	}
}

var _ store.PrayerRequestStore = (*PostgresPrayerRequestStore)(nil)

// WithTx implements store.PrayerRequestStore.WithTx
func (s *PostgresPrayerRequestStore) WithTx(tx *sql.Tx) store.PrayerRequestStore {
	return &PostgresPrayerRequestStore{db: tx, logger: s.logger}
}

// LockTicketSequence takes pg_advisory_xact_lock, which PostgreSQL releases
// at commit or rollback. Outside a transaction the lock would be released
// immediately, so this must run on a store returned by WithTx.
func (s *PostgresPrayerRequestStore) LockTicketSequence(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ticketLockKey); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to lock ticket sequence",
			slog.String("error", err.Error()))
		return fmt.Errorf("lock ticket sequence: %w", MapError(err))
	}
	return nil
}

// MaxTicket implements store.PrayerRequestStore.MaxTicket
func (s *PostgresPrayerRequestStore) MaxTicket(ctx context.Context) (int64, error) {
	var maxTicket int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(ticket), 0) FROM prayer_requests`).Scan(&maxTicket)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read max ticket",
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("read max ticket: %w", MapError(err))
	}
	return maxTicket, nil
}

// Create implements store.PrayerRequestStore.Create
func (s *PostgresPrayerRequestStore) Create(ctx context.Context, req *domain.PrayerRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.Ticket <= 0 {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidTicket)
	}

	query := `
		INSERT INTO prayer_requests (ticket, name, surname, email, phone, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		req.Ticket,
		req.Name,
		nullString(req.Surname),
		req.Email,
		nullString(req.Phone),
		req.Subject,
		req.Body,
		req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrDuplicateTicket) {
			log.Warn("ticket already taken", slog.Int64("ticket", req.Ticket))
			return store.ErrDuplicateTicket
		}
		log.Error("failed to create prayer request",
			slog.String("error", err.Error()),
			slog.Int64("ticket", req.Ticket))
		return err
	}

	log.Info("prayer request created",
		slog.Int64("prayer_request_id", req.ID),
		slog.Int64("ticket", req.Ticket))
	return nil
}
