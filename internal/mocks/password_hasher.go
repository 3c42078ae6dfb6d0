package mocks

import (
	"strings"

	"github.com/montesion/montesion-api/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher with a reversible
// "hashed:" prefix, which keeps service tests fast and their assertions readable.
type MockPasswordHasher struct {
	// HashErr is returned by Hash when set.
	HashErr error

	// HashCalls counts calls to Hash.
	HashCalls int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

const mockHashPrefix = "hashed:"

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(plaintext string) (string, error) {
	m.HashCalls++
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return mockHashPrefix + plaintext, nil
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(plaintext, hash string) bool {
	return strings.HasPrefix(hash, mockHashPrefix) && hash[len(mockHashPrefix):] == plaintext
}
