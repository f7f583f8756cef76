// Package ledger owns ticket identity: who holds each ticket and which
// single delegate, if any, may transfer it on the holder's behalf.
package ledger

import (
	"sync"

	"github.com/spec-kit/ticket-auction/internal/domain"
)

// Ledger is the authoritative record of ticket ownership. Ticket ids are
// assigned from a sequence owned by the ledger, starting at 1.
type Ledger struct {
	mu      sync.RWMutex
	nextID  uint64
	tickets map[uint64]*domain.Ticket
	counts  map[string]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		nextID:  1,
		tickets: make(map[uint64]*domain.Ticket),
		counts:  make(map[string]int),
	}
}

// Mint allocates the next ticket id and assigns it to owner with no
// approved delegate.
func (l *Ledger) Mint(owner, eventID string) (uint64, error) {
	if owner == "" {
		return 0, domain.ErrInvalidApproval
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.tickets[id] = &domain.Ticket{ID: id, EventID: eventID, Owner: owner}
	l.counts[owner]++
	return id, nil
}

// Transfer moves ownership of a ticket from its current owner to another
// address. The caller must be the current owner or the approved delegate.
// Any approval is cleared on success.
func (l *Ledger) Transfer(id uint64, from, to, caller string) error {
	if to == "" {
		return domain.ErrInvalidApproval
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ticket, ok := l.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	if ticket.Owner != from {
		return domain.ErrNotAuthorized
	}
	if caller != ticket.Owner && !ticket.IsApproved(caller) {
		return domain.ErrNotAuthorized
	}
	l.counts[ticket.Owner]--
	ticket.Owner = to
	ticket.Approved = nil
	l.counts[to]++
	return nil
}

// Approve records delegate as the one address allowed to transfer the
// ticket besides its owner. Only the owner may approve, and not to itself.
func (l *Ledger) Approve(id uint64, delegate, caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ticket, ok := l.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	if caller != ticket.Owner {
		return domain.ErrNotAuthorized
	}
	if delegate == "" || delegate == ticket.Owner {
		return domain.ErrInvalidApproval
	}
	ticket.Approved = &delegate
	return nil
}

// OwnerOf returns the current owner of the ticket.
func (l *Ledger) OwnerOf(id uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ticket, ok := l.tickets[id]
	if !ok {
		return "", domain.ErrTicketNotFound
	}
	return ticket.Owner, nil
}

// ApprovedFor returns the approved delegate for the ticket, if any.
func (l *Ledger) ApprovedFor(id uint64) (*string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ticket, ok := l.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if ticket.Approved == nil {
		return nil, nil
	}
	delegate := *ticket.Approved
	return &delegate, nil
}

// BalanceOf returns how many tickets the owner currently holds.
func (l *Ledger) BalanceOf(owner string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counts[owner]
}

// Get returns a copy of the ticket record.
func (l *Ledger) Get(id uint64) (domain.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ticket, ok := l.tickets[id]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return *ticket, nil
}

// TicketsOf returns copies of all tickets held by owner.
func (l *Ledger) TicketsOf(owner string) []domain.Ticket {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range l.tickets {
		if ticket.Owner == owner {
			result = append(result, *ticket)
		}
	}
	return result
}
