package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawRequest payload.
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BalancesResponse reports the caller's escrow balances.
type BalancesResponse struct {
	Locked       decimal.Decimal `json:"locked"`
	Withdrawable decimal.Decimal `json:"withdrawable"`
}

// JournalEntryResponse is one audit-trail line.
type JournalEntryResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	TicketID  *int64          `json:"ticket_id,omitempty"`
	EventID   *string         `json:"event_id,omitempty"`
	From      *string         `json:"from,omitempty"`
	To        *string         `json:"to,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
