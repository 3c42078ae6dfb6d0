package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/platform/mail"
	"github.com/montesion/montesion-api/internal/platform/metrics"
	"github.com/montesion/montesion-api/internal/redact"
	"github.com/montesion/montesion-api/internal/service/auth"
	"github.com/montesion/montesion-api/internal/store"
)

// TokenTypeBearer is the token_type reported alongside issued access tokens.
const TokenTypeBearer = "bearer"

// temporaryPasswordBytes is the entropy of a reset password; base64url
// without padding turns it into 14 characters.
const temporaryPasswordBytes = 10

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginResult is a freshly issued access token.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *domain.User
}

// AccountService defines the operations on member accounts.
type AccountService interface {
	// Register creates an active account and returns it without the
	// password hash. Returns a domain.ValidationError for bad input and
	// store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate checks an email and password pair. Both an unknown email
	// and a wrong password return ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// Login authenticates and issues a long-lived access token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// ResolveCurrentUser maps an access token to its account. Returns
	// auth.ErrInvalidToken or auth.ErrExpiredToken for a bad token and
	// store.ErrUserNotFound when the subject no longer exists.
	ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error)

	// UpdateProfile applies the present fields of upd to user's account and
	// returns the stored result. An empty update writes nothing.
	UpdateProfile(ctx context.Context, user *domain.User, upd domain.ProfileUpdate) (*domain.User, error)

	// DeleteAccount permanently removes user's account. Every failure is
	// reported as ErrInternal.
	DeleteAccount(ctx context.Context, user *domain.User) error

	// RequestPasswordReset replaces the password of the account registered
	// under email with a random one and emails it. The new password is
	// stored before sending, so ErrDeliveryFailed means the old password no
	// longer works and the new one never arrived.
	RequestPasswordReset(ctx context.Context, email string) error
}

// AccountOptions holds the tunables of the account service.
type AccountOptions struct {
	// LoginTokenLifetime is the lifetime of tokens issued by Login.
	LoginTokenLifetime time.Duration

	// Metrics records account events. May be nil.
	Metrics *metrics.Recorder
}

// accountServiceImpl implements the AccountService interface.
type accountServiceImpl struct {
	db       store.TxBeginner
	users    store.UserStore
	hasher   auth.PasswordHasher
	tokens   auth.JWTService
	mailer   mail.Sender
	loginTTL time.Duration
	metrics  *metrics.Recorder
	logger   *slog.Logger

	timeFunc   func() time.Time
	randReader io.Reader
}

var _ AccountService = (*accountServiceImpl)(nil)

// NewAccountService creates a new AccountService.
// It returns an error if any required dependency is nil.
func NewAccountService(
	db store.TxBeginner,
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	mailer mail.Sender,
	opts AccountOptions,
	logger *slog.Logger,
) (AccountService, error) {
	return newAccountService(db, users, hasher, tokens, mailer, opts, logger)
}

func newAccountService(
	db store.TxBeginner,
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	mailer mail.Sender,
	opts AccountOptions,
	logger *slog.Logger,
) (*accountServiceImpl, error) {
	switch {
	case db == nil:
		return nil, errors.New("account service: db cannot be nil")
	case users == nil:
		return nil, errors.New("account service: user store cannot be nil")
	case hasher == nil:
		return nil, errors.New("account service: password hasher cannot be nil")
	case tokens == nil:
		return nil, errors.New("account service: jwt service cannot be nil")
	case mailer == nil:
		return nil, errors.New("account service: mail sender cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &accountServiceImpl{
		db:         db,
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		mailer:     mailer,
		loginTTL:   opts.LoginTokenLifetime,
		metrics:    opts.Metrics,
		logger:     logger.With(slog.String("component", "account_service")),
		timeFunc:   time.Now,
		randReader: rand.Reader,
	}, nil
}

// Register implements AccountService.Register.
func (s *accountServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.FirstName, in.LastName, in.Email, in.Password, s.timeFunc().UTC())
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		existing, err := txUsers.GetByEmail(ctx, user.Email)
		if err == nil && existing != nil {
			return store.ErrEmailExists
		}
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("failed to check email: %w", err)
		}

		return txUsers.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration rejected, email in use")
			return nil, err
		}
		log.Error("failed to register account", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.AccountRegistered()
	log.Info("account registered", slog.Int64("user_id", user.ID))

	user.HashedPassword = ""
	return user, nil
}

// Authenticate implements AccountService.Authenticate.
func (s *accountServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login implements AccountService.Login.
func (s *accountServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.Login(false)
			log.Info("login rejected", slog.String("email", redact.Email(email)))
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(ctx, user.Email, s.loginTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.Login(true)
	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// ResolveCurrentUser implements AccountService.ResolveCurrentUser.
func (s *accountServiceImpl) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

// UpdateProfile implements AccountService.UpdateProfile.
func (s *accountServiceImpl) UpdateProfile(
	ctx context.Context,
	user *domain.User,
	upd domain.ProfileUpdate,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if upd.IsEmpty() {
		current, err := s.users.GetByID(ctx, user.ID)
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		return current, err
	}

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		current, err := txUsers.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		previousEmail := current.Email

		if err := upd.Apply(current, s.timeFunc().UTC()); err != nil {
			return err
		}

		if current.Email != previousEmail {
			other, err := txUsers.GetByEmail(ctx, current.Email)
			if err == nil && other.ID != current.ID {
				return store.ErrEmailExists
			}
			if err != nil && !errors.Is(err, store.ErrUserNotFound) {
				return fmt.Errorf("failed to check email: %w", err)
			}
		}

		if err := txUsers.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr),
			errors.Is(err, store.ErrEmailExists),
			errors.Is(err, store.ErrUserNotFound):
			return nil, err
		}
		log.Error("failed to update profile",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	log.Info("profile updated", slog.Int64("user_id", updated.ID))
	return updated, nil
}

// DeleteAccount implements AccountService.DeleteAccount.
func (s *accountServiceImpl) DeleteAccount(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		log.Error("failed to delete account",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: delete account: %v", ErrInternal, err)
	}

	s.metrics.AccountDeleted()
	log.Info("account deleted", slog.Int64("user_id", user.ID))
	return nil
}

// RequestPasswordReset implements AccountService.RequestPasswordReset.
func (s *accountServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	temporary, err := s.temporaryPassword()
	if err != nil {
		return fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hash, err := s.hasher.Hash(temporary)
	if err != nil {
		return fmt.Errorf("failed to hash temporary password: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		current, err := txUsers.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		current.HashedPassword = hash
		current.UpdatedAt = s.timeFunc().UTC()
		return txUsers.Update(ctx, current)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		log.Error("failed to store temporary password",
			slog.Int64("user_id", user.ID),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to reset password: %w", err)
	}
	s.metrics.PasswordReset()

	err = s.mailer.Send(ctx, passwordResetMessage(user, temporary))
	s.metrics.EmailSent(metrics.EmailPasswordReset, err)
	if err != nil {
		log.Error("password reset email not delivered",
			slog.Int64("user_id", user.ID),
			slog.String("to", redact.Email(user.Email)),
			slog.String("error", redact.Error(err)))
		if !errors.Is(err, ErrDeliveryFailed) {
			err = fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		}
		return err
	}

	log.Info("password reset", slog.Int64("user_id", user.ID))
	return nil
}

func (s *accountServiceImpl) temporaryPassword() (string, error) {
	buf := make([]byte, temporaryPasswordBytes)
	if _, err := io.ReadFull(s.randReader, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
