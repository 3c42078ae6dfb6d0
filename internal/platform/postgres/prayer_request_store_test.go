package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submitted = time.Date(2025, 4, 18, 21, 15, 0, 0, time.UTC)

func newPrayerRequest(ticket int64) *domain.PrayerRequest {
	return &domain.PrayerRequest{
		Ticket:    ticket,
		Name:      "José",
		Email:     "jose@example.com",
		Phone:     &testPhone,
		Subject:   "Salud",
		Body:      "Por la salud de mi madre",
		CreatedAt: submitted,
	}
}

func TestPrayerRequestStore_LockTicketSequence(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresPrayerRequestStore(db, nil)

	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(ticketLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.LockTicketSequence(context.Background()))
}

func TestPrayerRequestStore_MaxTicket(t *testing.T) {
	for _, want := range []int64{0, 41} {
		db, mock := newMock(t)
		s := NewPostgresPrayerRequestStore(db, nil)

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(ticket\), 0\) FROM prayer_requests`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(want))

		got, err := s.MaxTicket(context.Background())

		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPrayerRequestStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresPrayerRequestStore(db, nil)
	req := newPrayerRequest(12)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+prayer_requests.+RETURNING\s+id`).
		WithArgs(int64(12), "José", nil, "jose@example.com", testPhone, "Salud", "Por la salud de mi madre", submitted).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(30)))

	require.NoError(t, s.Create(context.Background(), req))
	assert.Equal(t, int64(30), req.ID)
}

func TestPrayerRequestStore_Create_DuplicateTicket(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresPrayerRequestStore(db, nil)

	mock.ExpectQuery(`INSERT INTO prayer_requests`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "prayer_requests_ticket_key"})

	err := s.Create(context.Background(), newPrayerRequest(3))

	assert.ErrorIs(t, err, store.ErrDuplicateTicket)
}

func TestPrayerRequestStore_Create_RejectsUnallocatedTicket(t *testing.T) {
	db, _ := newMock(t)
	s := NewPostgresPrayerRequestStore(db, nil)

	err := s.Create(context.Background(), newPrayerRequest(0))

	assert.ErrorIs(t, err, domain.ErrInvalidTicket)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPrayerRequestStore_WithTxLocksInsideTransaction(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresPrayerRequestStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`MAX\(ticket\)`).WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(2)))
	mock.ExpectQuery(`INSERT INTO prayer_requests`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectCommit()

	req := newPrayerRequest(0)
	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx)
		if err := txStore.LockTicketSequence(ctx); err != nil {
			return err
		}
		last, err := txStore.MaxTicket(ctx)
		if err != nil {
			return err
		}
		req.Ticket = last + 1
		return txStore.Create(ctx, req)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), req.Ticket)
}
