package mocks

import (
	"context"
	"time"

	"github.com/montesion/montesion-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing. Without function
// fields it issues "token-for:<subject>" and verifies exactly that format.
type MockJWTService struct {
	IssueFn  func(ctx context.Context, subject string, ttl time.Duration) (string, time.Time, error)
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Now is the issue time used by the default Issue; zero means time.Now.
	Now time.Time

	// LastTTL is the lifetime passed to the most recent Issue call.
	LastTTL time.Duration
}

var _ auth.JWTService = (*MockJWTService)(nil)

const mockTokenPrefix = "token-for:"

// Issue implements auth.JWTService.
func (m *MockJWTService) Issue(ctx context.Context, subject string, ttl time.Duration) (string, time.Time, error) {
	m.LastTTL = ttl
	if m.IssueFn != nil {
		return m.IssueFn(ctx, subject, ttl)
	}
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}
	return mockTokenPrefix + subject, now.Add(ttl), nil
}

// Verify implements auth.JWTService.
func (m *MockJWTService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	if len(token) <= len(mockTokenPrefix) || token[:len(mockTokenPrefix)] != mockTokenPrefix {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{Subject: token[len(mockTokenPrefix):]}, nil
}
