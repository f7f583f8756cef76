package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/escrow"
	"github.com/spec-kit/ticket-auction/internal/events"
	"github.com/spec-kit/ticket-auction/internal/journal"
	"github.com/spec-kit/ticket-auction/internal/observability"
	"github.com/spec-kit/ticket-auction/internal/payment"
)

// Balances is the caller-facing view of an escrow account.
type Balances struct {
	Locked       decimal.Decimal
	Withdrawable decimal.Decimal
}

// WalletService exposes balance reads and withdrawal.
type WalletService struct {
	book       *escrow.Book
	gateway    payment.Gateway
	journal    *journal.Journal
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// WalletDependencies bundles collaborators for the wallet service.
type WalletDependencies struct {
	Book       *escrow.Book
	Gateway    payment.Gateway
	Journal    *journal.Journal
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewWalletService constructs the service.
func NewWalletService(deps WalletDependencies) *WalletService {
	return &WalletService{
		book:       deps.Book,
		gateway:    deps.Gateway,
		journal:    deps.Journal,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Balances returns the caller's locked and withdrawable amounts.
func (s *WalletService) Balances(caller string) Balances {
	return Balances{
		Locked:       s.book.LockedOf(caller),
		Withdrawable: s.book.WithdrawableOf(caller),
	}
}

// Withdraw debits the caller's withdrawable balance and then pushes the
// funds out through the gateway. The debit is applied first: if the
// external payout fails the debit stays in place and the failure is
// reported, so a retry can never double-spend.
func (s *WalletService) Withdraw(ctx context.Context, caller string, amount decimal.Decimal) error {
	if err := s.book.Withdraw(caller, amount); err != nil {
		return err
	}

	if err := s.gateway.PayOut(ctx, caller, amount); err != nil {
		s.logger.Error("withdrawal payout failed after debit",
			zap.String("address", caller),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", domain.ErrPaymentTransferFailed, err)
	}

	from := caller
	s.journal.Record(ctx, journal.Entry{
		Kind:     journal.KindWithdrawal,
		FromAddr: &from,
		Amount:   amount,
	})
	s.metrics.RecordWithdrawal()
	s.metrics.SetEscrowHeld(s.book.TotalHeld().InexactFloat64())
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventWithdrawalCompleted,
		Timestamp: time.Now().UTC(),
		Payload:   events.WithdrawalCompletedPayload{Address: caller, Amount: amount},
	})
	return nil
}

// History lists the caller's recent journal entries.
func (s *WalletService) History(ctx context.Context, caller string, limit int) ([]journal.Entry, error) {
	return s.journal.ListByAddress(ctx, caller, limit)
}
