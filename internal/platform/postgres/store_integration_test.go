//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/platform/postgres"
	"github.com/montesion/montesion-api/internal/store"
	"github.com/montesion/montesion-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_Integration(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		now := time.Now().UTC().Truncate(time.Microsecond)

		user, err := domain.NewUser("Ana", "López", "ana.integration@example.com", "secreto123", now)
		require.NoError(t, err)
		user.HashedPassword = "$2a$10$hash"
		require.NoError(t, users.Create(ctx, user))
		require.NotZero(t, user.ID)

		got, err := users.GetByEmail(ctx, "ana.integration@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "López", got.LastName)
		assert.True(t, got.IsActive)

		_, err = users.GetByEmail(ctx, "ANA.integration@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		bio := "Servidora en alabanza"
		birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
		got.Bio = &bio
		got.BirthDate = &birth
		got.UpdatedAt = now.Add(time.Minute)
		require.NoError(t, users.Update(ctx, got))

		updated, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.Bio)
		assert.Equal(t, bio, *updated.Bio)
		require.NotNil(t, updated.BirthDate)
		assert.Equal(t, "1990-05-17", updated.BirthDate.Format(time.DateOnly))

		require.NoError(t, users.Delete(ctx, user.ID))
		_, err = users.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.ErrorIs(t, users.Delete(ctx, user.ID), store.ErrUserNotFound)
	})
}

func TestUserStore_Integration_DuplicateEmail(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		for i, wantErr := range []error{nil, store.ErrEmailExists} {
			user, err := domain.NewUser("Ana", "López", "dup.integration@example.com", "secreto123", time.Now())
			require.NoError(t, err)
			user.HashedPassword = "$2a$10$hash"

			err = users.Create(ctx, user)
			if wantErr == nil {
				require.NoError(t, err, "attempt %d", i)
				continue
			}
			assert.ErrorIs(t, err, wantErr, "attempt %d", i)
		}
	})
}

func TestPrayerRequestStore_Integration(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	civil := time.Date(2025, 3, 9, 10, 15, 0, 0, time.FixedZone("CST", -6*60*60))

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		requests := postgres.NewPostgresPrayerRequestStore(tx, nil)

		require.NoError(t, requests.LockTicketSequence(ctx))
		last, err := requests.MaxTicket(ctx)
		require.NoError(t, err)

		req, err := domain.NewPrayerRequest(domain.PrayerRequestInput{
			Name:    "Ana",
			Email:   "ana@example.com",
			Subject: "Salud",
			Body:    "Por la salud de mi madre",
		}, civil)
		require.NoError(t, err)
		req.Ticket = last + 1
		require.NoError(t, requests.Create(ctx, req))

		after, err := requests.MaxTicket(ctx)
		require.NoError(t, err)
		assert.Equal(t, last+1, after)

		var (
			name    string
			surname sql.NullString
			created time.Time
		)
		err = tx.QueryRowContext(ctx,
			`SELECT name, surname, created_at FROM prayer_requests WHERE ticket = $1`, last+1,
		).Scan(&name, &surname, &created)
		require.NoError(t, err)
		assert.Equal(t, "Ana", name)
		assert.False(t, surname.Valid)
		assert.Equal(t, "10:15", created.Format("15:04"), "civil time is stored without conversion")

		// A unique violation aborts the transaction, so this stays last.
		dup := *req
		dup.ID = 0
		assert.ErrorIs(t, requests.Create(ctx, &dup), store.ErrDuplicateTicket)
	})
}
