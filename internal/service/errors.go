package service

import (
	"errors"

	"github.com/montesion/montesion-api/internal/platform/mail"
)

// Service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for them; the API layer maps each one to
// an HTTP status code.
var (
	// ErrInvalidCredentials is returned by Authenticate for both an unknown
	// email and a wrong password, so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInternal marks failures whose cause must not reach the client.
	// The underlying error is logged where it happens.
	ErrInternal = errors.New("internal error")

	// ErrDeliveryFailed is returned when an email the caller depends on
	// could not be sent. It is the same sentinel the mail package uses.
	ErrDeliveryFailed = mail.ErrDeliveryFailed
)
