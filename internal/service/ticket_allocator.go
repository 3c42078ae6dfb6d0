package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/store"
)

// TicketAllocator hands out sequential prayer request tickets.
//
// Next must be called with a store bound to the transaction that will insert
// the request: the sequence lock it takes is released only when that
// transaction ends, which is what keeps concurrent submissions from reading
// the same maximum.
type TicketAllocator struct {
	logger *slog.Logger
}

// NewTicketAllocator creates a TicketAllocator.
func NewTicketAllocator(logger *slog.Logger) *TicketAllocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketAllocator{logger: logger.With(slog.String("component", "ticket_allocator"))}
}

// Next locks the ticket sequence and returns the highest issued ticket plus
// one. The first ticket is 1.
func (a *TicketAllocator) Next(ctx context.Context, requests store.PrayerRequestStore) (int64, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	if err := requests.LockTicketSequence(ctx); err != nil {
		return 0, fmt.Errorf("failed to lock ticket sequence: %w", err)
	}

	last, err := requests.MaxTicket(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read last ticket: %w", err)
	}

	next := last + 1
	log.Debug("allocated ticket", slog.Int64("ticket", next))
	return next, nil
}
