package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAuctionRequest payload.
type CreateAuctionRequest struct {
	TicketID        uint64 `json:"ticket_id"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// BidRequest payload; the amount is carried as the accompanying payment.
type BidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// AuctionResponse describes a lot.
type AuctionResponse struct {
	TicketID      uint64          `json:"ticket_id"`
	Seller        string          `json:"seller"`
	HighestBidder *string         `json:"highest_bidder,omitempty"`
	HighestBid    decimal.Decimal `json:"highest_bid"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Open          bool            `json:"open"`
}

// ReclaimResponse describes a recovered stranded bid.
type ReclaimResponse struct {
	TicketID uint64          `json:"ticket_id"`
	Bidder   string          `json:"bidder"`
	Refunded decimal.Decimal `json:"refunded"`
}

// SettlementResponse describes a completed close.
type SettlementResponse struct {
	TicketID uint64          `json:"ticket_id"`
	Seller   string          `json:"seller"`
	Winner   string          `json:"winner"`
	Price    decimal.Decimal `json:"price"`
}
