package api

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/service"
)

var errNotStubbed = errors.New("not stubbed")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccounts implements service.AccountService with function fields.
type fakeAccounts struct {
	RegisterFn      func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	LoginFn         func(ctx context.Context, email, password string) (*service.LoginResult, error)
	ResolveFn       func(ctx context.Context, token string) (*domain.User, error)
	UpdateProfileFn func(ctx context.Context, user *domain.User, upd domain.ProfileUpdate) (*domain.User, error)
	DeleteFn        func(ctx context.Context, user *domain.User) error
	ResetFn         func(ctx context.Context, email string) error
}

var _ service.AccountService = (*fakeAccounts)(nil)

func (f *fakeAccounts) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	if f.RegisterFn == nil {
		return nil, errNotStubbed
	}
	return f.RegisterFn(ctx, in)
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	res, err := f.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return res.User, nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if f.LoginFn == nil {
		return nil, errNotStubbed
	}
	return f.LoginFn(ctx, email, password)
}

func (f *fakeAccounts) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if f.ResolveFn == nil {
		return nil, errNotStubbed
	}
	return f.ResolveFn(ctx, token)
}

func (f *fakeAccounts) UpdateProfile(
	ctx context.Context,
	user *domain.User,
	upd domain.ProfileUpdate,
) (*domain.User, error) {
	if f.UpdateProfileFn == nil {
		return nil, errNotStubbed
	}
	return f.UpdateProfileFn(ctx, user, upd)
}

func (f *fakeAccounts) DeleteAccount(ctx context.Context, user *domain.User) error {
	if f.DeleteFn == nil {
		return errNotStubbed
	}
	return f.DeleteFn(ctx, user)
}

func (f *fakeAccounts) RequestPasswordReset(ctx context.Context, email string) error {
	if f.ResetFn == nil {
		return errNotStubbed
	}
	return f.ResetFn(ctx, email)
}

// fakePrayers implements service.PrayerService.
type fakePrayers struct {
	SubmitFn func(ctx context.Context, in service.SubmitInput) (*domain.PrayerRequest, error)
}

var _ service.PrayerService = (*fakePrayers)(nil)

func (f *fakePrayers) Submit(ctx context.Context, in service.SubmitInput) (*domain.PrayerRequest, error) {
	if f.SubmitFn == nil {
		return nil, errNotStubbed
	}
	return f.SubmitFn(ctx, in)
}

func (f *fakePrayers) Message() string {
	return service.PrayerScripture
}
