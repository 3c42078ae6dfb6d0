package auth

import (
	"context"
	"time"
)

// JWTService issues and verifies signed access tokens.
type JWTService interface {
	// Issue creates a signed token for subject that expires after ttl.
	// A zero or negative ttl falls back to the service's default lifetime.
	// Returns the token and its expiry instant.
	Issue(ctx context.Context, subject string, ttl time.Duration) (string, time.Time, error)

	// Verify checks the signature and expiry of token and returns its claims.
	// Returns ErrExpiredToken at or after the expiry instant and
	// ErrInvalidToken for every other failure.
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Claims holds the verified contents of an access token.
type Claims struct {
	// Subject is the email address of the account the token was issued to.
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti"`
}
