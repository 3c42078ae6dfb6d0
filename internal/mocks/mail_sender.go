package mocks

import (
	"context"
	"sync"

	"github.com/montesion/montesion-api/internal/platform/mail"
)

// MockMailSender implements mail.Sender for testing. It records every
// message passed to Send, including ones it fails.
type MockMailSender struct {
	SendFn func(ctx context.Context, msg mail.Message) error

	// Err is returned by Send when SendFn is nil.
	Err error

	mu   sync.Mutex
	sent []mail.Message
}

var _ mail.Sender = (*MockMailSender)(nil)

// Send implements mail.Sender.
func (m *MockMailSender) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	return m.Err
}

// Sent returns the recorded messages.
func (m *MockMailSender) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}
