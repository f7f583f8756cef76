// Package payment is the boundary to the external money rail. Everything
// inside the service settles against the escrow book; only payment intake
// (bids, primary sales) and withdrawal payout actually move money in or out.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway moves real funds between participants and the service's custody.
// Implementations must treat each call as a single attempt; the caller
// decides whether and how to retry.
type Gateway interface {
	// Collect pulls amount from the payer into custody. A non-nil error
	// means no funds moved.
	Collect(ctx context.Context, from string, amount decimal.Decimal) error

	// PayOut pushes amount from custody to the recipient. A non-nil error
	// means the payout did not happen; the caller's internal debit stays.
	PayOut(ctx context.Context, to string, amount decimal.Decimal) error
}

// InProcess is a gateway for deployments where custody is handled by the
// surrounding platform and every transfer succeeds immediately. It exists
// so the engine's ordering discipline is exercised even without a real
// payment backend.
type InProcess struct {
	logger *zap.Logger
}

// NewInProcess returns an always-succeeding gateway.
func NewInProcess(logger *zap.Logger) *InProcess {
	return &InProcess{logger: logger}
}

func (g *InProcess) Collect(ctx context.Context, from string, amount decimal.Decimal) error {
	g.logger.Debug("collected payment",
		zap.String("from", from),
		zap.String("amount", amount.String()),
	)
	return nil
}

func (g *InProcess) PayOut(ctx context.Context, to string, amount decimal.Decimal) error {
	g.logger.Debug("paid out withdrawal",
		zap.String("to", to),
		zap.String("amount", amount.String()),
	)
	return nil
}
