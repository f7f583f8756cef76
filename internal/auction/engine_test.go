package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/clock"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/escrow"
	"github.com/spec-kit/ticket-auction/internal/ledger"
)

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// flakyGateway fails collection on demand so payment-failure rollback can
// be exercised.
type flakyGateway struct {
	failCollect bool
	collected   []decimal.Decimal
}

func (g *flakyGateway) Collect(_ context.Context, _ string, amount decimal.Decimal) error {
	if g.failCollect {
		return errors.New("rail unavailable")
	}
	g.collected = append(g.collected, amount)
	return nil
}

func (g *flakyGateway) PayOut(_ context.Context, _ string, _ decimal.Decimal) error {
	return nil
}

type fixture struct {
	engine  *Engine
	tickets *ledger.Ledger
	book    *escrow.Book
	clock   *clock.Fixed
	gateway *flakyGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fc := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tickets := ledger.New()
	book := escrow.NewBook()
	gateway := &flakyGateway{}
	engine := NewEngine(Dependencies{
		Tickets: tickets,
		Escrow:  book,
		Gateway: gateway,
		Clock:   fc,
		Logger:  zap.NewNop(),
	}, Config{MinDuration: time.Minute, GraceWindow: 5 * time.Minute})
	return &fixture{engine: engine, tickets: tickets, book: book, clock: fc, gateway: gateway}
}

func (f *fixture) mint(t *testing.T, owner string) uint64 {
	t.Helper()
	id, err := f.tickets.Mint(owner, "ev-1")
	require.NoError(t, err)
	return id
}

func TestCreate_Rules(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")

	_, err := f.engine.Create(99, 10*time.Minute, "seller")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	_, err = f.engine.Create(id, 10*time.Minute, "stranger")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = f.engine.Create(id, 30*time.Second, "seller")
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	a, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	assert.Equal(t, "seller", a.Seller)
	assert.False(t, a.HasBid())
	assert.True(t, a.HighestBid.IsZero())

	_, err = f.engine.Create(id, 10*time.Minute, "seller")
	assert.ErrorIs(t, err, domain.ErrAuctionAlreadyOpen)
}

func TestCreate_ReplacesExpiredBidlessLot(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	_, err = f.engine.Create(id, 10*time.Minute, "seller")
	assert.NoError(t, err)
}

func TestCreate_ExpiredLotWithBidMustBeClosedFirst(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "bidder", d(100))
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	_, err = f.engine.Create(id, 10*time.Minute, "seller")
	assert.ErrorIs(t, err, domain.ErrAuctionAlreadyOpen)

	// After close the ticket belongs to the winner, who can list it again.
	_, err = f.engine.Close(id, "seller")
	require.NoError(t, err)
	_, err = f.engine.Create(id, 10*time.Minute, "bidder")
	assert.NoError(t, err)
}

func TestBid_Ladder(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)

	receipt, err := f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)
	assert.Nil(t, receipt.Outbid)
	assert.True(t, f.book.LockedOf("alice").Equal(d(100)))

	receipt, err = f.engine.Bid(ctx, id, "bob", d(150))
	require.NoError(t, err)
	require.NotNil(t, receipt.Outbid)
	assert.Equal(t, "alice", receipt.Outbid.Bidder)
	assert.True(t, receipt.Outbid.Amount.Equal(d(100)))

	assert.True(t, f.book.LockedOf("alice").IsZero())
	assert.True(t, f.book.WithdrawableOf("alice").Equal(d(100)))
	assert.True(t, f.book.LockedOf("bob").Equal(d(150)))

	// Outbidding twice in a row credits each displaced bidder exactly once.
	_, err = f.engine.Bid(ctx, id, "carol", d(200))
	require.NoError(t, err)
	assert.True(t, f.book.WithdrawableOf("alice").Equal(d(100)))
	assert.True(t, f.book.WithdrawableOf("bob").Equal(d(150)))
	assert.True(t, f.book.LockedOf("bob").IsZero())
	assert.True(t, f.book.LockedOf("carol").Equal(d(200)))

	// Every unit in the book is one of the three collected payments.
	assert.True(t, f.book.TotalHeld().Equal(d(450)))
}

func TestBid_Validation(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Bid(ctx, id, "alice", d(100))
	assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)

	_, err = f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)

	_, err = f.engine.Bid(ctx, id, "seller", d(100))
	assert.ErrorIs(t, err, domain.ErrSellerCannotBid)

	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)

	// Equal to the highest bid is not an increase.
	_, err = f.engine.Bid(ctx, id, "bob", d(100))
	assert.ErrorIs(t, err, domain.ErrBidTooLow)

	_, err = f.engine.Bid(ctx, id, "bob", d(99))
	assert.ErrorIs(t, err, domain.ErrBidTooLow)
}

func TestBid_TimeBoundaries(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	start := f.clock.Now()
	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)

	// One tick before the end time is still open.
	f.clock.Set(start.Add(10*time.Minute - time.Second))
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	assert.NoError(t, err)

	// Exactly at the end time is closed.
	f.clock.Set(start.Add(10 * time.Minute))
	_, err = f.engine.Bid(ctx, id, "bob", d(150))
	assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)

	// Inside the grace window bids stay rejected as not-open.
	f.clock.Set(start.Add(10*time.Minute + 4*time.Minute))
	_, err = f.engine.Bid(ctx, id, "bob", d(150))
	assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)

	// Beyond the grace window the cutoff is reported as final.
	f.clock.Set(start.Add(10*time.Minute + 5*time.Minute))
	_, err = f.engine.Bid(ctx, id, "bob", d(150))
	assert.ErrorIs(t, err, domain.ErrAuctionGraceOver)

	// The rejected bids moved no money.
	assert.True(t, f.book.LockedOf("alice").Equal(d(100)))
	assert.True(t, f.book.LockedOf("bob").IsZero())
	assert.True(t, f.book.WithdrawableOf("bob").IsZero())
}

func TestBid_PaymentFailureRestoresDisplacedBidder(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)

	f.gateway.failCollect = true
	_, err = f.engine.Bid(ctx, id, "bob", d(150))
	assert.ErrorIs(t, err, domain.ErrPaymentTransferFailed)

	// alice is still the highest bidder with her funds locked; bob has
	// nothing in the book.
	a, err := f.engine.Get(id)
	require.NoError(t, err)
	require.NotNil(t, a.HighestBidder)
	assert.Equal(t, "alice", *a.HighestBidder)
	assert.True(t, a.HighestBid.Equal(d(100)))
	assert.True(t, f.book.LockedOf("alice").Equal(d(100)))
	assert.True(t, f.book.WithdrawableOf("alice").IsZero())
	assert.True(t, f.book.LockedOf("bob").IsZero())

	// The rail recovers and bidding resumes where it left off.
	f.gateway.failCollect = false
	_, err = f.engine.Bid(ctx, id, "bob", d(150))
	require.NoError(t, err)
	assert.True(t, f.book.WithdrawableOf("alice").Equal(d(100)))
	assert.True(t, f.book.LockedOf("bob").Equal(d(150)))
}

func TestClose_FullScenario(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "S")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "S")
	require.NoError(t, err)

	_, err = f.engine.Bid(ctx, id, "A", d(100))
	require.NoError(t, err)
	assert.True(t, f.book.LockedOf("A").Equal(d(100)))

	_, err = f.engine.Bid(ctx, id, "B", d(150))
	require.NoError(t, err)
	assert.True(t, f.book.LockedOf("A").IsZero())
	assert.True(t, f.book.WithdrawableOf("A").Equal(d(100)))
	assert.True(t, f.book.LockedOf("B").Equal(d(150)))

	// Too early to close.
	_, err = f.engine.Close(id, "S")
	assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)

	f.clock.Advance(10 * time.Minute)
	settlement, err := f.engine.Close(id, "S")
	require.NoError(t, err)
	assert.Equal(t, "B", settlement.Winner)
	assert.True(t, settlement.Price.Equal(d(150)))

	owner, err := f.tickets.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, "B", owner)
	assert.True(t, f.book.WithdrawableOf("S").Equal(d(150)))
	assert.True(t, f.book.LockedOf("B").IsZero())

	require.NoError(t, f.book.Withdraw("A", d(100)))
	assert.True(t, f.book.WithdrawableOf("A").IsZero())
}

func TestClose_Authorization(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	_, err = f.engine.Close(id, "stranger")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// The winning bidder may close too.
	_, err = f.engine.Close(id, "alice")
	assert.NoError(t, err)
}

func TestClose_NoBid(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	_, err = f.engine.Close(id, "seller")
	assert.ErrorIs(t, err, domain.ErrNoSuccessfulBid)
}

func TestClose_Twice(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	_, err = f.engine.Close(id, "seller")
	require.NoError(t, err)

	_, err = f.engine.Close(id, "seller")
	assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)

	// No double payout, no re-transfer.
	assert.True(t, f.book.WithdrawableOf("seller").Equal(d(100)))
	owner, _ := f.tickets.OwnerOf(id)
	assert.Equal(t, "alice", owner)
}

func TestClose_TransferFailureRollsBackSettlement(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)

	// Seller hands the ticket to someone else mid-auction; the snapshotted
	// seller can no longer deliver it.
	require.NoError(t, f.tickets.Transfer(id, "seller", "other", "seller"))

	f.clock.Advance(10 * time.Minute)
	_, err = f.engine.Close(id, "alice")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// All-or-nothing: no payout, winner's funds still locked, lot still
	// closeable once the books allow it.
	assert.True(t, f.book.WithdrawableOf("seller").IsZero())
	assert.True(t, f.book.LockedOf("alice").Equal(d(100)))
	owner, _ := f.tickets.OwnerOf(id)
	assert.Equal(t, "other", owner)

	a, err := f.engine.Get(id)
	require.NoError(t, err)
	assert.False(t, a.Closed)
}

func TestReclaim_RecoversStrandedBid(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)

	// Seller gives the ticket away and never gets it back, so close can
	// never deliver it to alice.
	require.NoError(t, f.tickets.Transfer(id, "seller", "other", "seller"))

	// Within the grace window the lot is still close-or-wait.
	f.clock.Advance(12 * time.Minute)
	_, err = f.engine.Reclaim(id, "alice")
	assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)

	f.clock.Advance(5 * time.Minute)

	_, err = f.engine.Reclaim(id, "bob")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	refund, err := f.engine.Reclaim(id, "alice")
	require.NoError(t, err)
	assert.True(t, refund.Amount.Equal(d(100)))
	assert.True(t, f.book.LockedOf("alice").IsZero())
	assert.True(t, f.book.WithdrawableOf("alice").Equal(d(100)))
	assert.True(t, f.book.WithdrawableOf("seller").IsZero())

	// The lot is now bidless, so the current owner can list the ticket.
	_, err = f.engine.Reclaim(id, "alice")
	assert.ErrorIs(t, err, domain.ErrNoSuccessfulBid)
	_, err = f.engine.Create(id, 10*time.Minute, "other")
	assert.NoError(t, err)
}

func TestReclaim_RefusedWhileSellerOwnsTicket(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")
	ctx := context.Background()

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id, "alice", d(100))
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	_, err = f.engine.Reclaim(id, "alice")
	assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)

	// Close is still the way out and still works.
	settlement, err := f.engine.Close(id, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", settlement.Winner)
}

func TestIsOpen_PureRead(t *testing.T) {
	f := newFixture(t)
	id := f.mint(t, "seller")

	assert.False(t, f.engine.IsOpen(id))

	_, err := f.engine.Create(id, 10*time.Minute, "seller")
	require.NoError(t, err)
	assert.True(t, f.engine.IsOpen(id))

	f.clock.Advance(10 * time.Minute)
	assert.False(t, f.engine.IsOpen(id))

	// Reading openness did not mutate the record.
	a, err := f.engine.Get(id)
	require.NoError(t, err)
	assert.False(t, a.Closed)
}

func TestExpired_ListsUnclosedEndedLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id1 := f.mint(t, "seller")
	id2 := f.mint(t, "seller")

	_, err := f.engine.Create(id1, 10*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Create(id2, 20*time.Minute, "seller")
	require.NoError(t, err)
	_, err = f.engine.Bid(ctx, id1, "alice", d(100))
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)
	expired := f.engine.Expired()
	require.Len(t, expired, 1)
	assert.Equal(t, id1, expired[0].TicketID)
	assert.Equal(t, 1, f.engine.OpenCount())
}
