package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/escrow"
	"github.com/spec-kit/ticket-auction/internal/events"
	"github.com/spec-kit/ticket-auction/internal/journal"
	"github.com/spec-kit/ticket-auction/internal/observability"
)

type stubGateway struct {
	failPayOut bool
	payouts    int
}

func (g *stubGateway) Collect(_ context.Context, _ string, _ decimal.Decimal) error {
	return nil
}

func (g *stubGateway) PayOut(_ context.Context, _ string, _ decimal.Decimal) error {
	if g.failPayOut {
		return errors.New("rail down")
	}
	g.payouts++
	return nil
}

func newWallet(gateway *stubGateway) (*WalletService, *escrow.Book) {
	book := escrow.NewBook()
	svc := NewWalletService(WalletDependencies{
		Book:       book,
		Gateway:    gateway,
		Journal:    journal.New(nil, zap.NewNop()),
		Dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
	return svc, book
}

func TestWithdraw_Succeeds(t *testing.T) {
	gateway := &stubGateway{}
	svc, book := newWallet(gateway)
	require.NoError(t, book.CreditWithdrawable("alice", decimal.NewFromInt(100)))

	err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.payouts)
	assert.True(t, svc.Balances("alice").Withdrawable.Equal(decimal.NewFromInt(40)))
}

func TestWithdraw_InsufficientOrZero(t *testing.T) {
	svc, book := newWallet(&stubGateway{})
	require.NoError(t, book.CreditWithdrawable("alice", decimal.NewFromInt(10)))

	err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(11))
	assert.ErrorIs(t, err, domain.ErrInsufficientWithdrawable)

	err = svc.Withdraw(context.Background(), "alice", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestWithdraw_PayoutFailureKeepsDebit(t *testing.T) {
	gateway := &stubGateway{failPayOut: true}
	svc, book := newWallet(gateway)
	require.NoError(t, book.CreditWithdrawable("alice", decimal.NewFromInt(100)))

	err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrPaymentTransferFailed)

	// The debit is not re-credited: a retry after a reported payout
	// failure must be a deliberate operator action, not an automatic
	// refund that reopens a double-spend window.
	assert.True(t, svc.Balances("alice").Withdrawable.IsZero())
}
