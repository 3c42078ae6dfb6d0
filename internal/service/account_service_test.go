package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/mocks"
	"github.com/montesion/montesion-api/internal/platform/mail"
	"github.com/montesion/montesion-api/internal/service/auth"
	"github.com/montesion/montesion-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC)

// newMockDB returns a sqlmock-backed *sql.DB whose expectations are checked
// when the test ends. The services only use it to begin transactions.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

type accountFixture struct {
	svc    *accountServiceImpl
	dbMock sqlmock.Sqlmock
	users  *mocks.MockUserStore
	hasher *mocks.MockPasswordHasher
	tokens *mocks.MockJWTService
	mailer *mocks.MockMailSender
}

func newAccountFixture(t *testing.T, seed ...*domain.User) *accountFixture {
	t.Helper()
	db, dbMock := newMockDB(t)
	f := &accountFixture{
		dbMock: dbMock,
		users:  mocks.NewMockUserStore(seed...),
		hasher: &mocks.MockPasswordHasher{},
		tokens: &mocks.MockJWTService{Now: fixedNow},
		mailer: &mocks.MockMailSender{},
	}

	svc, err := newAccountService(db, f.users, f.hasher, f.tokens, f.mailer,
		AccountOptions{LoginTokenLifetime: 7 * 24 * time.Hour}, nil)
	require.NoError(t, err)
	svc.timeFunc = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func (f *accountFixture) expectCommit() {
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectCommit()
}

func (f *accountFixture) expectRollback() {
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectRollback()
}

func existingUser() *domain.User {
	return &domain.User{
		FirstName:      "María",
		LastName:       "López",
		Email:          "maria@example.com",
		HashedPassword: "hashed:oldpassword",
		IsActive:       true,
		CreatedAt:      fixedNow.Add(-24 * time.Hour),
		UpdatedAt:      fixedNow.Add(-24 * time.Hour),
	}
}

func strPtr(s string) *string { return &s }

func TestNewAccountService_RequiresDependencies(t *testing.T) {
	db, _ := newMockDB(t)
	users := mocks.NewMockUserStore()
	hasher := &mocks.MockPasswordHasher{}
	tokens := &mocks.MockJWTService{}
	mailer := &mocks.MockMailSender{}

	_, err := NewAccountService(nil, users, hasher, tokens, mailer, AccountOptions{}, nil)
	assert.Error(t, err)
	_, err = NewAccountService(db, nil, hasher, tokens, mailer, AccountOptions{}, nil)
	assert.Error(t, err)
	_, err = NewAccountService(db, users, nil, tokens, mailer, AccountOptions{}, nil)
	assert.Error(t, err)
	_, err = NewAccountService(db, users, hasher, nil, mailer, AccountOptions{}, nil)
	assert.Error(t, err)
	_, err = NewAccountService(db, users, hasher, tokens, nil, AccountOptions{}, nil)
	assert.Error(t, err)

	svc, err := NewAccountService(db, users, hasher, tokens, mailer, AccountOptions{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestRegister(t *testing.T) {
	t.Run("creates active user without exposing the hash", func(t *testing.T) {
		f := newAccountFixture(t)
		f.expectCommit()

		user, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "  Juan ",
			LastName:  "Pérez",
			Email:     "juan@example.com",
			Password:  "secreto123",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "Juan", user.FirstName)
		assert.True(t, user.IsActive)
		assert.Empty(t, user.Password)
		assert.Empty(t, user.HashedPassword)
		assert.Equal(t, fixedNow, user.CreatedAt)

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed:secreto123", stored.HashedPassword)

		body, err := json.Marshal(user)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "secreto123")
		assert.Equal(t, 1, f.users.Len())
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.expectRollback()

		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "Otra",
			LastName:  "Persona",
			Email:     "maria@example.com",
			Password:  "secreto123",
		})

		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.Equal(t, 1, f.users.Len())
	})

	t.Run("invalid input fails before hashing", func(t *testing.T) {
		f := newAccountFixture(t)

		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "Juan",
			LastName:  "Pérez",
			Email:     "not-an-email",
			Password:  "secreto123",
		})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, domain.FieldEmail, verr.Field)
		assert.Zero(t, f.hasher.HashCalls)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		f := newAccountFixture(t)
		f.users.CreateFn = func(context.Context, *domain.User) error { return errors.New("connection reset") }
		f.expectRollback()

		_, err := f.svc.Register(context.Background(), RegisterInput{
			FirstName: "Juan",
			LastName:  "Pérez",
			Email:     "juan@example.com",
			Password:  "secreto123",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")
	})
}

func TestAuthenticate(t *testing.T) {
	f := newAccountFixture(t, existingUser())
	ctx := context.Background()

	user, err := f.svc.Authenticate(ctx, "maria@example.com", "oldpassword")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)

	_, err = f.svc.Authenticate(ctx, "maria@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, "nadie@example.com", "oldpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, "MARIA@example.com", "oldpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "emails are matched exactly")
}

func TestLogin(t *testing.T) {
	f := newAccountFixture(t, existingUser())

	res, err := f.svc.Login(context.Background(), "maria@example.com", "oldpassword")

	require.NoError(t, err)
	assert.Equal(t, "token-for:maria@example.com", res.AccessToken)
	assert.Equal(t, TokenTypeBearer, res.TokenType)
	assert.Equal(t, 7*24*time.Hour, f.tokens.LastTTL)
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), res.ExpiresAt)

	_, err = f.svc.Login(context.Background(), "maria@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IssueFailure(t *testing.T) {
	f := newAccountFixture(t, existingUser())
	f.tokens.IssueFn = func(context.Context, string, time.Duration) (string, time.Time, error) {
		return "", time.Time{}, errors.New("signing failed")
	}

	_, err := f.svc.Login(context.Background(), "maria@example.com", "oldpassword")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveCurrentUser(t *testing.T) {
	f := newAccountFixture(t, existingUser())
	ctx := context.Background()

	user, err := f.svc.ResolveCurrentUser(ctx, "token-for:maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, "María", user.FirstName)

	_, err = f.svc.ResolveCurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = f.svc.ResolveCurrentUser(ctx, "token-for:gone@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	f.tokens.VerifyFn = func(context.Context, string) (*auth.Claims, error) { return nil, auth.ErrExpiredToken }
	_, err = f.svc.ResolveCurrentUser(ctx, "token-for:maria@example.com")
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestUpdateProfile(t *testing.T) {
	t.Run("phone only leaves other fields", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.expectCommit()
		current, err := f.users.GetByID(context.Background(), 1)
		require.NoError(t, err)

		updated, err := f.svc.UpdateProfile(context.Background(), current,
			domain.ProfileUpdate{Phone: strPtr("9511234567")})

		require.NoError(t, err)
		require.NotNil(t, updated.Phone)
		assert.Equal(t, "9511234567", *updated.Phone)
		assert.Equal(t, "María", updated.FirstName)
		assert.Equal(t, "López", updated.LastName)
		assert.Equal(t, "maria@example.com", updated.Email)
		assert.Equal(t, "hashed:oldpassword", updated.HashedPassword)
		assert.Nil(t, updated.Bio)
		assert.Equal(t, fixedNow, updated.UpdatedAt)

		stored, err := f.users.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "9511234567", *stored.Phone)
	})

	t.Run("email taken by another account", func(t *testing.T) {
		other := existingUser()
		other.Email = "pedro@example.com"
		f := newAccountFixture(t, existingUser(), other)
		f.expectRollback()
		current, _ := f.users.GetByID(context.Background(), 1)

		_, err := f.svc.UpdateProfile(context.Background(), current,
			domain.ProfileUpdate{Email: strPtr("pedro@example.com")})

		assert.ErrorIs(t, err, store.ErrEmailExists)
		stored, _ := f.users.GetByID(context.Background(), 1)
		assert.Equal(t, "maria@example.com", stored.Email)
	})

	t.Run("keeping the same email is allowed", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.expectCommit()
		current, _ := f.users.GetByID(context.Background(), 1)

		updated, err := f.svc.UpdateProfile(context.Background(), current,
			domain.ProfileUpdate{Email: strPtr(" maria@example.com "), FirstName: strPtr("Mary")})

		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", updated.Email)
		assert.Equal(t, "Mary", updated.FirstName)
	})

	t.Run("invalid field rolls back", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.expectRollback()
		current, _ := f.users.GetByID(context.Background(), 1)

		_, err := f.svc.UpdateProfile(context.Background(), current,
			domain.ProfileUpdate{Phone: strPtr("123"), LastName: strPtr("  ")})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, domain.FieldLastName, verr.Field)
		stored, _ := f.users.GetByID(context.Background(), 1)
		assert.Nil(t, stored.Phone)
	})

	t.Run("missing account", func(t *testing.T) {
		f := newAccountFixture(t)
		f.expectRollback()

		_, err := f.svc.UpdateProfile(context.Background(), &domain.User{ID: 99},
			domain.ProfileUpdate{Bio: strPtr("hola")})

		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("empty update writes nothing", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.users.UpdateFn = func(context.Context, *domain.User) error {
			t.Fatal("empty update reached the store")
			return nil
		}
		current, _ := f.users.GetByID(context.Background(), 1)

		got, err := f.svc.UpdateProfile(context.Background(), current, domain.ProfileUpdate{})

		require.NoError(t, err)
		assert.Equal(t, current.UpdatedAt, got.UpdatedAt)
		assert.Equal(t, "maria@example.com", got.Email)
		assert.Zero(t, f.users.WithTxCalls)
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("deleted user can no longer authenticate", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.expectCommit()
		current, _ := f.users.GetByID(context.Background(), 1)

		require.NoError(t, f.svc.DeleteAccount(context.Background(), current))

		_, err := f.svc.Authenticate(context.Background(), "maria@example.com", "oldpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Zero(t, f.users.Len())
	})

	t.Run("store failure is internal", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.users.DeleteFn = func(context.Context, int64) error { return errors.New("lock timeout") }
		f.expectRollback()

		err := f.svc.DeleteAccount(context.Background(), &domain.User{ID: 1})

		assert.ErrorIs(t, err, ErrInternal)
		assert.Equal(t, 1, f.users.Len())
	})
}

func TestRequestPasswordReset(t *testing.T) {
	t.Run("replaces the password and emails it", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.expectCommit()

		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "maria@example.com"))

		sent := f.mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "maria@example.com", sent[0].To)
		assert.Equal(t, "Recuperación de contraseña - Monte Sion", sent[0].Subject)

		data, ok := sent[0].Data.(passwordResetData)
		require.True(t, ok)
		assert.Len(t, data.Password, 14)
		assert.NotContains(t, data.Password, "=")

		body, err := mail.Render(sent[0])
		require.NoError(t, err)
		assert.Contains(t, body, "Nueva contraseña: "+data.Password)

		_, err = f.svc.Authenticate(context.Background(), "maria@example.com", "oldpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.svc.Authenticate(context.Background(), "maria@example.com", data.Password)
		assert.NoError(t, err)
	})

	t.Run("delivery failure still invalidates the old password", func(t *testing.T) {
		f := newAccountFixture(t, existingUser())
		f.mailer.Err = errors.New("relay unreachable")
		f.expectCommit()

		err := f.svc.RequestPasswordReset(context.Background(), "maria@example.com")

		assert.ErrorIs(t, err, ErrDeliveryFailed)
		_, err = f.svc.Authenticate(context.Background(), "maria@example.com", "oldpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAccountFixture(t)

		err := f.svc.RequestPasswordReset(context.Background(), "nadie@example.com")

		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.Empty(t, f.mailer.Sent())
	})

	t.Run("temporary passwords differ", func(t *testing.T) {
		f := newAccountFixture(t)
		a, err := f.svc.temporaryPassword()
		require.NoError(t, err)
		b, err := f.svc.temporaryPassword()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}
