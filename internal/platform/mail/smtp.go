package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/montesion/montesion-api/internal/config"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/redact"
	"gopkg.in/gomail.v2"
)

// SenderName is the display name on outgoing mail.
const SenderName = "Monte Sion"

// transport hands a composed message to a relay within ctx.
type transport interface {
	Deliver(ctx context.Context, m *gomail.Message) error
}

// SMTPSender delivers messages through the configured SMTP relay. The
// connection must be TLS, via STARTTLS or implicit TLS on port 465, before
// credentials are sent.
type SMTPSender struct {
	cfg       config.MailConfig
	transport transport
	logger    *slog.Logger
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender from cfg. If logger is nil, the
// default logger is used.
func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		cfg:       cfg,
		transport: newSMTPRelay(cfg.Host, cfg.Port, cfg.SMTPUsername(), cfg.Password),
		logger:    logger.With(slog.String("component", "mail")),
	}
}

// From returns the configured sender address.
func (s *SMTPSender) From() string {
	return s.cfg.From
}

// Send renders msg and hands it to the relay. It returns when the relay
// accepts the message, when ctx is done, or after the configured timeout,
// whichever comes first; the relay session is torn down in the latter two
// cases. Every failure wraps ErrDeliveryFailed and is left for the caller
// to log.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		return ErrNotConfigured
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: empty recipient", ErrDeliveryFailed)
	}

	body, err := Render(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", s.cfg.From, SenderName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/plain", body)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.transport.Deliver(ctx, m); err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("email sent",
		slog.String("to", redact.Email(msg.To)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
