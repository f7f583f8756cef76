package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auction is one resale lot for a single ticket. The seller is snapshotted
// when the auction is created; a mid-auction ownership change does not
// rewrite it. Closed records a completed close; openness is always decided
// by comparing the current time against EndTime.
type Auction struct {
	TicketID      uint64
	Seller        string
	HighestBidder *string
	HighestBid    decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
	Closed        bool
}

// HasBid reports whether at least one bid has been accepted.
func (a *Auction) HasBid() bool {
	return a.HighestBidder != nil
}

// ExpiredAt reports whether the bidding window has ended as of now.
func (a *Auction) ExpiredAt(now time.Time) bool {
	return !now.Before(a.EndTime)
}
