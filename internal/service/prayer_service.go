package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/platform/mail"
	"github.com/montesion/montesion-api/internal/platform/metrics"
	"github.com/montesion/montesion-api/internal/redact"
	"github.com/montesion/montesion-api/internal/store"
)

// DefaultTicketAttempts bounds how many transactions Submit runs when the
// ticket it allocated collides with one already stored.
const DefaultTicketAttempts = 3

// SubmitInput is a visitor's prayer request as received from the form.
type SubmitInput struct {
	Name    string
	Surname string
	Email   string
	Phone   string
	Subject string
	Body    string
}

// PrayerService defines the operations on prayer requests.
type PrayerService interface {
	// Submit validates, numbers and stores a prayer request, then emails a
	// confirmation to the visitor. A confirmation that cannot be delivered
	// does not fail the submission.
	Submit(ctx context.Context, in SubmitInput) (*domain.PrayerRequest, error)

	// Message returns the text shown on the prayer request page.
	Message() string
}

// PrayerOptions holds the tunables of the prayer service.
type PrayerOptions struct {
	// Location is the civil time zone of the stored creation timestamp.
	// Nil means UTC.
	Location *time.Location

	// Sender is the church address used as Reply-To on confirmations.
	Sender string

	// MaxAttempts bounds ticket collision retries. Zero selects
	// DefaultTicketAttempts.
	MaxAttempts int

	// Metrics records submissions. May be nil.
	Metrics *metrics.Recorder
}

type prayerServiceImpl struct {
	db          store.TxBeginner
	requests    store.PrayerRequestStore
	allocator   *TicketAllocator
	mailer      mail.Sender
	location    *time.Location
	sender      string
	maxAttempts int
	metrics     *metrics.Recorder
	logger      *slog.Logger
	timeFunc    func() time.Time
}

var _ PrayerService = (*prayerServiceImpl)(nil)

// NewPrayerService creates a new PrayerService.
// It returns an error if any required dependency is nil.
func NewPrayerService(
	db store.TxBeginner,
	requests store.PrayerRequestStore,
	allocator *TicketAllocator,
	mailer mail.Sender,
	opts PrayerOptions,
	logger *slog.Logger,
) (PrayerService, error) {
	return newPrayerService(db, requests, allocator, mailer, opts, logger)
}

func newPrayerService(
	db store.TxBeginner,
	requests store.PrayerRequestStore,
	allocator *TicketAllocator,
	mailer mail.Sender,
	opts PrayerOptions,
	logger *slog.Logger,
) (*prayerServiceImpl, error) {
	switch {
	case db == nil:
		return nil, errors.New("prayer service: db cannot be nil")
	case requests == nil:
		return nil, errors.New("prayer service: prayer request store cannot be nil")
	case allocator == nil:
		return nil, errors.New("prayer service: ticket allocator cannot be nil")
	case mailer == nil:
		return nil, errors.New("prayer service: mail sender cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultTicketAttempts
	}

	return &prayerServiceImpl{
		db:          db,
		requests:    requests,
		allocator:   allocator,
		mailer:      mailer,
		location:    location,
		sender:      opts.Sender,
		maxAttempts: attempts,
		metrics:     opts.Metrics,
		logger:      logger.With(slog.String("component", "prayer_service")),
		timeFunc:    time.Now,
	}, nil
}

// Submit implements PrayerService.Submit.
func (s *prayerServiceImpl) Submit(ctx context.Context, in SubmitInput) (*domain.PrayerRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req, err := domain.NewPrayerRequest(domain.PrayerRequestInput(in), s.timeFunc().In(s.location))
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			txRequests := s.requests.WithTx(tx)

			ticket, err := s.allocator.Next(ctx, txRequests)
			if err != nil {
				return err
			}
			req.Ticket = ticket
			return txRequests.Create(ctx, req)
		})
		if err == nil || !errors.Is(err, store.ErrDuplicateTicket) || attempt >= s.maxAttempts {
			break
		}

		s.metrics.TicketRetried()
		log.Warn("ticket collision, retrying",
			slog.Int64("ticket", req.Ticket),
			slog.Int("attempt", attempt))
		req.ID = 0
		req.Ticket = 0
	}
	if err != nil {
		log.Error("failed to store prayer request", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to store prayer request: %w", err)
	}

	s.metrics.PrayerRequestStored()
	log.Info("prayer request stored",
		slog.Int64("ticket", req.Ticket),
		slog.Int64("id", req.ID))

	s.sendConfirmation(ctx, req)
	return req, nil
}

// sendConfirmation emails the visitor. Failures are logged and counted only.
func (s *prayerServiceImpl) sendConfirmation(ctx context.Context, req *domain.PrayerRequest) {
	err := s.mailer.Send(ctx, prayerConfirmation(req, s.sender))
	s.metrics.EmailSent(metrics.EmailPrayerConfirmation, err)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("prayer confirmation not delivered",
			slog.Int64("ticket", req.Ticket),
			slog.String("to", redact.Email(req.Email)),
			slog.String("error", redact.Error(err)))
	}
}

// Message implements PrayerService.Message.
func (s *prayerServiceImpl) Message() string {
	return PrayerScripture
}
