package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/events"
	"github.com/spec-kit/ticket-auction/internal/journal"
	"github.com/spec-kit/ticket-auction/internal/ledger"
	"github.com/spec-kit/ticket-auction/internal/registry"
)

// TicketingService covers the primary market and direct ticket handling:
// event creation, purchase, transfer and approval.
type TicketingService struct {
	registry   *registry.Registry
	tickets    *ledger.Ledger
	journal    *journal.Journal
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketingDependencies bundles collaborators for the ticketing service.
type TicketingDependencies struct {
	Registry   *registry.Registry
	Tickets    *ledger.Ledger
	Journal    *journal.Journal
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketingService constructs the service.
func NewTicketingService(deps TicketingDependencies) *TicketingService {
	return &TicketingService{
		registry:   deps.Registry,
		tickets:    deps.Tickets,
		journal:    deps.Journal,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateEvent registers a new event for the caller.
func (s *TicketingService) CreateEvent(ctx context.Context, caller, name string, price decimal.Decimal, quantity int64) (domain.Event, error) {
	return s.registry.CreateEvent(name, caller, price, quantity)
}

// PurchaseTicket sells one ticket of the event to the caller.
func (s *TicketingService) PurchaseTicket(ctx context.Context, caller, eventID string, payment decimal.Decimal) (uint64, error) {
	ticketID, err := s.registry.MintForPurchase(ctx, eventID, caller, payment)
	if err != nil {
		return 0, err
	}

	tid := int64(ticketID)
	buyer := caller
	s.journal.Record(ctx, journal.Entry{
		Kind:     journal.KindPrimarySale,
		TicketID: &tid,
		EventID:  &eventID,
		FromAddr: &buyer,
		Amount:   payment,
	})
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketPurchased,
		Timestamp: time.Now().UTC(),
		Payload: events.TicketPurchasedPayload{
			TicketID: ticketID,
			EventID:  eventID,
			Buyer:    caller,
			Paid:     payment,
		},
	})
	return ticketID, nil
}

// TransferTicket moves a ticket to another account. The caller must be
// the owner or the approved delegate.
func (s *TicketingService) TransferTicket(ctx context.Context, caller string, ticketID uint64, to string) error {
	ticket, err := s.tickets.Get(ticketID)
	if err != nil {
		return err
	}
	return s.tickets.Transfer(ticketID, ticket.Owner, to, caller)
}

// ApproveDelegate sets the single transfer delegate for a ticket.
func (s *TicketingService) ApproveDelegate(ctx context.Context, caller string, ticketID uint64, delegate string) error {
	return s.tickets.Approve(ticketID, delegate, caller)
}

// GetTicket returns a ticket record.
func (s *TicketingService) GetTicket(ticketID uint64) (domain.Ticket, error) {
	return s.tickets.Get(ticketID)
}

// MyTickets lists the caller's tickets.
func (s *TicketingService) MyTickets(caller string) []domain.Ticket {
	return s.tickets.TicketsOf(caller)
}

// ListEvents returns all events.
func (s *TicketingService) ListEvents() []domain.Event {
	return s.registry.List()
}

// GetEvent returns one event.
func (s *TicketingService) GetEvent(eventID string) (domain.Event, error) {
	return s.registry.Get(eventID)
}
