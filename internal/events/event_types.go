package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAuctionCreated      EventType = "auction_created"
	EventBidPlaced           EventType = "bid_placed"
	EventBidOutbid           EventType = "bid_outbid"
	EventAuctionClosed       EventType = "auction_closed"
	EventAuctionExpired      EventType = "auction_expired"
	EventBidReclaimed        EventType = "bid_reclaimed"
	EventTicketPurchased     EventType = "ticket_purchased"
	EventWithdrawalCompleted EventType = "withdrawal_completed"
)

// Event is a notification emitted by services after a state change has
// been committed.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuctionCreatedPayload payload.
type AuctionCreatedPayload struct {
	TicketID uint64    `json:"ticket_id"`
	Seller   string    `json:"seller"`
	EndTime  time.Time `json:"end_time"`
}

// BidPlacedPayload payload.
type BidPlacedPayload struct {
	TicketID uint64          `json:"ticket_id"`
	Bidder   string          `json:"bidder"`
	Amount   decimal.Decimal `json:"amount"`
}

// BidOutbidPayload payload.
type BidOutbidPayload struct {
	TicketID uint64          `json:"ticket_id"`
	Bidder   string          `json:"bidder"`
	Refunded decimal.Decimal `json:"refunded"`
}

// AuctionClosedPayload payload.
type AuctionClosedPayload struct {
	TicketID uint64          `json:"ticket_id"`
	Seller   string          `json:"seller"`
	Winner   string          `json:"winner"`
	Price    decimal.Decimal `json:"price"`
}

// AuctionExpiredPayload payload.
type AuctionExpiredPayload struct {
	TicketID uint64    `json:"ticket_id"`
	EndTime  time.Time `json:"end_time"`
	HasBid   bool      `json:"has_bid"`
}

// BidReclaimedPayload payload.
type BidReclaimedPayload struct {
	TicketID uint64          `json:"ticket_id"`
	Bidder   string          `json:"bidder"`
	Refunded decimal.Decimal `json:"refunded"`
}

// TicketPurchasedPayload payload.
type TicketPurchasedPayload struct {
	TicketID uint64          `json:"ticket_id"`
	EventID  string          `json:"event_id"`
	Buyer    string          `json:"buyer"`
	Paid     decimal.Decimal `json:"paid"`
}

// WithdrawalCompletedPayload payload.
type WithdrawalCompletedPayload struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}
