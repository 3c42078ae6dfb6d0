// Package mail sends plaintext notification emails through an SMTP relay.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
)

var (
	// ErrDeliveryFailed is returned when a message could not be handed to
	// the relay. Callers decide whether that is fatal.
	ErrDeliveryFailed = errors.New("email delivery failed")

	// ErrNotConfigured is returned when no sender credentials are configured.
	ErrNotConfigured = fmt.Errorf("%w: mail sender not configured", ErrDeliveryFailed)

	// ErrTLSRequired is returned when the relay offers no TLS. Credentials
	// are never sent in that case.
	ErrTLSRequired = fmt.Errorf("%w: relay does not support STARTTLS", ErrDeliveryFailed)
)

// Message is a single plaintext email. Body is executed with Data to
// produce the message text.
type Message struct {
	To      string
	Subject string
	ReplyTo string
	Body    *template.Template
	Data    any
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render executes the message template.
func Render(msg Message) (string, error) {
	if msg.Body == nil {
		return "", errors.New("message has no body template")
	}
	var buf bytes.Buffer
	if err := msg.Body.Execute(&buf, msg.Data); err != nil {
		return "", fmt.Errorf("render %s: %w", msg.Body.Name(), err)
	}
	return buf.String(), nil
}
