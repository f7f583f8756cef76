// Package auction runs one strictly-ascending English auction per ticket
// and owns the protocol that moves bidders' funds through escrow and hands
// the ticket to the winner when a lot closes.
package auction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/clock"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/escrow"
	"github.com/spec-kit/ticket-auction/internal/ledger"
	"github.com/spec-kit/ticket-auction/internal/payment"
)

const (
	// DefaultMinDuration is the shortest bidding window a seller may open.
	DefaultMinDuration = time.Minute
	// DefaultGraceWindow bounds how long after the end time a lot keeps its
	// record alive for a close call before late bids are reported as past
	// the grace cutoff rather than merely closed.
	DefaultGraceWindow = 5 * time.Minute
)

// Dependencies bundles the collaborators the engine composes on.
type Dependencies struct {
	Tickets *ledger.Ledger
	Escrow  *escrow.Book
	Gateway payment.Gateway
	Clock   clock.Clock
	Logger  *zap.Logger
}

// Config tunes auction timing rules.
type Config struct {
	MinDuration time.Duration
	GraceWindow time.Duration
}

// Engine holds every auction record and serializes all compound
// escrow-plus-ledger transitions behind one mutex, so a bid or close is
// observed either fully applied or not at all.
type Engine struct {
	mu       sync.Mutex
	tickets  *ledger.Ledger
	escrow   *escrow.Book
	gateway  payment.Gateway
	clock    clock.Clock
	logger   *zap.Logger
	auctions map[uint64]*domain.Auction

	minDuration time.Duration
	grace       time.Duration
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies, cfg Config) *Engine {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = DefaultGraceWindow
	}
	return &Engine{
		tickets:     deps.Tickets,
		escrow:      deps.Escrow,
		gateway:     deps.Gateway,
		clock:       deps.Clock,
		logger:      deps.Logger,
		auctions:    make(map[uint64]*domain.Auction),
		minDuration: cfg.MinDuration,
		grace:       cfg.GraceWindow,
	}
}

// Receipt describes an accepted bid, including the refund applied to the
// bidder it displaced.
type Receipt struct {
	TicketID uint64
	Bidder   string
	Amount   decimal.Decimal
	Outbid   *Refund
}

// Refund records an outbid bidder whose funds moved to withdrawable.
type Refund struct {
	Bidder string
	Amount decimal.Decimal
}

// Settlement describes a completed close.
type Settlement struct {
	TicketID uint64
	Seller   string
	Winner   string
	Price    decimal.Decimal
}

// Create opens an auction for a ticket the caller owns. The seller is
// snapshotted here; transferring the ticket mid-auction does not change
// who the proceeds go to, and it makes the eventual close fail rather
// than settle against a stranger.
func (e *Engine) Create(ticketID uint64, duration time.Duration, caller string) (domain.Auction, error) {
	owner, err := e.tickets.OwnerOf(ticketID)
	if err != nil {
		return domain.Auction{}, err
	}
	if caller != owner {
		return domain.Auction{}, domain.ErrNotOwner
	}
	if duration < e.minDuration {
		return domain.Auction{}, domain.ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	if existing, ok := e.auctions[ticketID]; ok && !existing.Closed {
		// An unexpired lot always blocks. An expired lot with a winning
		// bid still holds the winner's locked funds and must be closed
		// before the ticket can be relisted; only a bidless expired lot
		// is replaced silently.
		if !existing.ExpiredAt(now) || existing.HasBid() {
			return domain.Auction{}, domain.ErrAuctionAlreadyOpen
		}
	}

	a := &domain.Auction{
		TicketID:   ticketID,
		Seller:     owner,
		HighestBid: decimal.Zero,
		StartTime:  now,
		EndTime:    now.Add(duration),
	}
	e.auctions[ticketID] = a
	e.logger.Info("auction created",
		zap.Uint64("ticket_id", ticketID),
		zap.String("seller", owner),
		zap.Time("end_time", a.EndTime),
	)
	return *a, nil
}

// Bid places a strictly higher bid on an open lot. In one indivisible
// step it refunds the displaced bidder to withdrawable, collects the
// incoming payment, and locks it behind the new highest bid. If payment
// collection fails the refund is rolled back before anyone can observe it.
func (e *Engine) Bid(ctx context.Context, ticketID uint64, bidder string, amount decimal.Decimal) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[ticketID]
	if !ok || a.Closed {
		return Receipt{}, domain.ErrAuctionNotOpen
	}
	now := e.clock.Now()
	if !now.Before(a.EndTime.Add(e.grace)) {
		return Receipt{}, domain.ErrAuctionGraceOver
	}
	if a.ExpiredAt(now) {
		return Receipt{}, domain.ErrAuctionNotOpen
	}
	if bidder == a.Seller {
		return Receipt{}, domain.ErrSellerCannotBid
	}
	if !amount.GreaterThan(a.HighestBid) {
		return Receipt{}, domain.ErrBidTooLow
	}

	receipt := Receipt{TicketID: ticketID, Bidder: bidder, Amount: amount}

	// Refund the displaced bidder first so their funds are withdrawable
	// the moment the new bid stands.
	if a.HasBid() {
		prev := *a.HighestBidder
		if err := e.escrow.UnlockToWithdrawable(prev, a.HighestBid); err != nil {
			return Receipt{}, fmt.Errorf("refund previous bidder: %w", err)
		}
		receipt.Outbid = &Refund{Bidder: prev, Amount: a.HighestBid}
	}

	if err := e.gateway.Collect(ctx, bidder, amount); err != nil {
		if receipt.Outbid != nil {
			if relockErr := e.escrow.RelockFromWithdrawable(receipt.Outbid.Bidder, receipt.Outbid.Amount); relockErr != nil {
				e.logger.Error("failed to restore displaced bidder after payment failure",
					zap.Uint64("ticket_id", ticketID),
					zap.Error(relockErr),
				)
			}
		}
		return Receipt{}, fmt.Errorf("%w: %v", domain.ErrPaymentTransferFailed, err)
	}

	if err := e.escrow.Lock(bidder, amount); err != nil {
		return Receipt{}, err
	}
	a.HighestBidder = &bidder
	a.HighestBid = amount

	e.logger.Info("bid accepted",
		zap.Uint64("ticket_id", ticketID),
		zap.String("bidder", bidder),
		zap.String("amount", amount.String()),
	)
	return receipt, nil
}

// Close settles an ended lot: the winning bid moves from the winner's
// locked balance to the seller's withdrawable balance and the ticket
// transfers to the winner, or neither happens.
func (e *Engine) Close(ticketID uint64, caller string) (Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[ticketID]
	if !ok || a.Closed {
		return Settlement{}, domain.ErrAuctionNotOpen
	}
	if !a.HasBid() {
		return Settlement{}, domain.ErrNoSuccessfulBid
	}
	winner := *a.HighestBidder

	owner, err := e.tickets.OwnerOf(ticketID)
	if err != nil {
		return Settlement{}, err
	}
	if caller != owner && caller != winner {
		return Settlement{}, domain.ErrNotAuthorized
	}
	if e.clock.Now().Before(a.EndTime) {
		return Settlement{}, domain.ErrAuctionStillOpen
	}

	if err := e.escrow.Settle(winner, a.Seller, a.HighestBid); err != nil {
		return Settlement{}, err
	}
	// The seller consented to this handoff when opening the lot, so the
	// transfer runs on the seller's authority. If the seller gave the
	// ticket away mid-auction this fails and the settlement is undone.
	if err := e.tickets.Transfer(ticketID, a.Seller, winner, a.Seller); err != nil {
		if revErr := e.escrow.ReverseSettle(winner, a.Seller, a.HighestBid); revErr != nil {
			e.logger.Error("failed to reverse settlement after transfer failure",
				zap.Uint64("ticket_id", ticketID),
				zap.Error(revErr),
			)
		}
		return Settlement{}, err
	}
	a.Closed = true

	e.logger.Info("auction closed",
		zap.Uint64("ticket_id", ticketID),
		zap.String("winner", winner),
		zap.String("price", a.HighestBid.String()),
	)
	return Settlement{TicketID: ticketID, Seller: a.Seller, Winner: winner, Price: a.HighestBid}, nil
}

// Reclaim lets the highest bidder recover a stranded bid. If the seller
// gave the ticket away mid-auction, every Close attempt fails and the
// winning funds stay locked; once the grace window has passed and the
// seller still does not own the ticket, the bidder may unlock them. The
// lot is left bidless so the current owner can list the ticket again.
func (e *Engine) Reclaim(ticketID uint64, caller string) (Refund, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[ticketID]
	if !ok || a.Closed {
		return Refund{}, domain.ErrAuctionNotOpen
	}
	if !a.HasBid() {
		return Refund{}, domain.ErrNoSuccessfulBid
	}
	if caller != *a.HighestBidder {
		return Refund{}, domain.ErrNotAuthorized
	}
	if e.clock.Now().Before(a.EndTime.Add(e.grace)) {
		return Refund{}, domain.ErrAuctionStillOpen
	}
	owner, err := e.tickets.OwnerOf(ticketID)
	if err != nil {
		return Refund{}, err
	}
	// While the seller holds the ticket the lot is settleable, so close
	// stays the only way out.
	if owner == a.Seller {
		return Refund{}, domain.ErrAuctionStillOpen
	}

	amount := a.HighestBid
	if err := e.escrow.UnlockToWithdrawable(caller, amount); err != nil {
		return Refund{}, err
	}
	a.HighestBidder = nil
	a.HighestBid = decimal.Zero

	e.logger.Info("stranded bid reclaimed",
		zap.Uint64("ticket_id", ticketID),
		zap.String("bidder", caller),
		zap.String("amount", amount.String()),
	)
	return Refund{Bidder: caller, Amount: amount}, nil
}

// IsOpen reports whether an unexpired, unclosed auction exists for the
// ticket. It is a pure read: openness is computed from the clock, never
// from a cached flag flip.
func (e *Engine) IsOpen(ticketID uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.auctions[ticketID]
	return ok && !a.Closed && !a.ExpiredAt(e.clock.Now())
}

// Get returns a copy of the auction record for the ticket.
func (e *Engine) Get(ticketID uint64) (domain.Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.auctions[ticketID]
	if !ok {
		return domain.Auction{}, domain.ErrAuctionNotFound
	}
	return *a, nil
}

// Expired returns unclosed auctions whose bidding window has ended.
// The sweeper uses this to nudge participants toward an explicit close;
// the engine never closes a lot on its own.
func (e *Engine) Expired() []domain.Auction {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	var result []domain.Auction
	for _, a := range e.auctions {
		if !a.Closed && a.ExpiredAt(now) {
			result = append(result, *a)
		}
	}
	return result
}

// OpenCount returns the number of currently open lots, for metrics.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	count := 0
	for _, a := range e.auctions {
		if !a.Closed && !a.ExpiredAt(now) {
			count++
		}
	}
	return count
}
