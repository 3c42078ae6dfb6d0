package auth

import (
	"github.com/montesion/montesion-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher derives and checks one-way password hashes.
type PasswordHasher interface {
	// Hash returns a salted hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. A malformed hash is
	// reported as a mismatch.
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a BcryptHasher. A cost outside bcrypt's accepted
// range selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements PasswordHasher.Hash.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > domain.MaxPasswordBytes {
		return "", domain.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify implements PasswordHasher.Verify.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
