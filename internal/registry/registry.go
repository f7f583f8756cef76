// Package registry owns event records and the primary sale: checking
// inventory and payment, decrementing the counter, and minting the ticket.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/clock"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/escrow"
	"github.com/spec-kit/ticket-auction/internal/ledger"
	"github.com/spec-kit/ticket-auction/internal/payment"
)

// Registry stores events and mints tickets for verified purchases.
type Registry struct {
	mu      sync.Mutex
	events  map[string]*domain.Event
	tickets *ledger.Ledger
	escrow  *escrow.Book
	gateway payment.Gateway
	clock   clock.Clock
	logger  *zap.Logger
}

// New constructs a registry minting into the given ledger. Sale payments
// are collected through the gateway before the proceeds are credited into
// the escrow book, so the book never holds value the rail did not take in.
func New(tickets *ledger.Ledger, book *escrow.Book, gateway payment.Gateway, clk clock.Clock, logger *zap.Logger) *Registry {
	return &Registry{
		events:  make(map[string]*domain.Event),
		tickets: tickets,
		escrow:  book,
		gateway: gateway,
		clock:   clk,
		logger:  logger,
	}
}

// CreateEvent registers a new event. The id is derived from name and
// creator, so recreating the same event is reported as a conflict rather
// than silently resetting its inventory.
func (r *Registry) CreateEvent(name, creator string, price decimal.Decimal, quantity int64) (domain.Event, error) {
	if name == "" || creator == "" || quantity <= 0 || price.IsNegative() {
		return domain.Event{}, domain.ErrInvalidAmount
	}
	id := domain.EventID(name, creator)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; ok {
		return domain.Event{}, domain.ErrEventExists
	}
	ev := &domain.Event{
		ID:        id,
		Name:      name,
		Creator:   creator,
		Price:     price,
		Remaining: quantity,
		CreatedAt: r.clock.Now(),
	}
	r.events[id] = ev
	r.logger.Info("event created",
		zap.String("event_id", id),
		zap.String("creator", creator),
		zap.Int64("quantity", quantity),
	)
	return *ev, nil
}

// MintForPurchase sells one ticket of the event to buyer. The payment must
// cover the ticket price; it is collected from the buyer first, then the
// inventory counter is decremented, the ticket is minted, and the proceeds
// are credited to the organizer's withdrawable balance. A failed collection
// leaves inventory, ledger, and book untouched.
func (r *Registry) MintForPurchase(ctx context.Context, eventID, buyer string, paid decimal.Decimal) (uint64, error) {
	if buyer == "" {
		return 0, domain.ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok {
		return 0, domain.ErrEventNotFound
	}
	if ev.Remaining <= 0 {
		return 0, domain.ErrSoldOut
	}
	if paid.LessThan(ev.Price) {
		return 0, domain.ErrInsufficientPayment
	}

	if paid.IsPositive() {
		if err := r.gateway.Collect(ctx, buyer, paid); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrPaymentTransferFailed, err)
		}
	}

	id, err := r.tickets.Mint(buyer, eventID)
	if err != nil {
		return 0, err
	}
	ev.Remaining--
	if paid.IsPositive() {
		if err := r.escrow.CreditWithdrawable(ev.Creator, paid); err != nil {
			return 0, err
		}
	}

	r.logger.Info("ticket purchased",
		zap.String("event_id", eventID),
		zap.String("buyer", buyer),
		zap.Uint64("ticket_id", id),
		zap.Int64("remaining", ev.Remaining),
	)
	return id, nil
}

// Get returns a copy of the event record.
func (r *Registry) Get(eventID string) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return *ev, nil
}

// List returns copies of all events.
func (r *Registry) List() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Event, 0, len(r.events))
	for _, ev := range r.events {
		result = append(result, *ev)
	}
	return result
}

// ListBy returns the events created by the given account.
func (r *Registry) ListBy(creator string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Event
	for _, ev := range r.events {
		if ev.Creator == creator {
			result = append(result, *ev)
		}
	}
	return result
}
