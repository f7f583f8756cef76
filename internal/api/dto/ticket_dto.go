package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// EventResponse describes an event.
type EventResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Creator   string          `json:"creator"`
	Price     decimal.Decimal `json:"price"`
	Remaining int64           `json:"remaining"`
	CreatedAt time.Time       `json:"created_at"`
}

// PurchaseRequest payload; the payment accompanies the purchase.
type PurchaseRequest struct {
	Payment decimal.Decimal `json:"payment"`
}

// TicketResponse describes a ticket.
type TicketResponse struct {
	ID       uint64  `json:"id"`
	EventID  string  `json:"event_id"`
	Owner    string  `json:"owner"`
	Approved *string `json:"approved,omitempty"`
}

// TransferRequest payload.
type TransferRequest struct {
	To string `json:"to"`
}

// ApproveRequest payload.
type ApproveRequest struct {
	Delegate string `json:"delegate"`
}
