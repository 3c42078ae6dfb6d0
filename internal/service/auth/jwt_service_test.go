package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/montesion/montesion-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
	testSubject = "ana@example.com"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// clock is a settable time source for token tests.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T, secret string, c *clock) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, 0, c.Now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "too-short"})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, DefaultTokenLifetime: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, svc.(*hmacJWTService).defaultLifetime)
}

func TestIssue(t *testing.T) {
	c := &clock{now: fixedTime}
	svc := newTestService(t, testSecret, c)

	t.Run("explicit lifetime", func(t *testing.T) {
		token, expiresAt, err := svc.Issue(context.Background(), testSubject, 7*24*time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, fixedTime.Add(7*24*time.Hour), expiresAt)

		claims, err := svc.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, testSubject, claims.Subject)
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("zero lifetime uses default", func(t *testing.T) {
		_, expiresAt, err := svc.Issue(context.Background(), testSubject, 0)
		require.NoError(t, err)
		assert.Equal(t, fixedTime.Add(DefaultTokenLifetime), expiresAt)
	})

	t.Run("unique token ids", func(t *testing.T) {
		a, _, err := svc.Issue(context.Background(), testSubject, time.Minute)
		require.NoError(t, err)
		b, _, err := svc.Issue(context.Background(), testSubject, time.Minute)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("empty subject", func(t *testing.T) {
		_, _, err := svc.Issue(context.Background(), "", time.Minute)
		assert.Error(t, err)
	})
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	c := &clock{now: fixedTime}
	svc := newTestService(t, testSecret, c)
	token, expiresAt, err := svc.Issue(context.Background(), testSubject, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"just issued", fixedTime, nil},
		{"one second before expiry", expiresAt.Add(-time.Second), nil},
		{"at expiry", expiresAt, ErrExpiredToken},
		{"after expiry", expiresAt.Add(time.Minute), ErrExpiredToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c.now = tc.now
			claims, err := svc.Verify(context.Background(), token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testSubject, claims.Subject)
		})
	}
}

func TestVerify_Rejects(t *testing.T) {
	c := &clock{now: fixedTime}
	svc := newTestService(t, testSecret, c)
	other := newTestService(t, wrongSecret, c)

	forged, _, err := other.Issue(context.Background(), testSubject, time.Hour)
	require.NoError(t, err)

	good, _, err := svc.Issue(context.Background(), testSubject, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: testSubject,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   testSubject,
		ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong signing key": forged,
		"tampered payload":  tampered,
		"malformed":         "not-a-jwt",
		"empty":             "",
		"missing subject":   noSubject,
		"missing expiry":    noExpiry,
		"unexpected alg":    wrongAlg,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := svc.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
