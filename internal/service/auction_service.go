package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/auction"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/events"
	"github.com/spec-kit/ticket-auction/internal/journal"
	"github.com/spec-kit/ticket-auction/internal/observability"
)

// AuctionService fronts the engine with journaling, metrics and events.
// All protocol rules live in the engine; nothing here mutates auction
// state directly.
type AuctionService struct {
	engine     *auction.Engine
	journal    *journal.Journal
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AuctionDependencies bundles collaborators for the auction service.
type AuctionDependencies struct {
	Engine     *auction.Engine
	Journal    *journal.Journal
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuctionService constructs the service.
func NewAuctionService(deps AuctionDependencies) *AuctionService {
	return &AuctionService{
		engine:     deps.Engine,
		journal:    deps.Journal,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// CreateAuction opens a lot for a ticket the caller owns.
func (s *AuctionService) CreateAuction(ctx context.Context, caller string, ticketID uint64, duration time.Duration) (domain.Auction, error) {
	a, err := s.engine.Create(ticketID, duration, caller)
	if err != nil {
		return domain.Auction{}, err
	}
	s.metrics.SetOpenAuctions(s.engine.OpenCount())
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAuctionCreated,
		Timestamp: time.Now().UTC(),
		Payload: events.AuctionCreatedPayload{
			TicketID: a.TicketID,
			Seller:   a.Seller,
			EndTime:  a.EndTime,
		},
	})
	return a, nil
}

// PlaceBid submits the caller's bid with its accompanying payment.
func (s *AuctionService) PlaceBid(ctx context.Context, caller string, ticketID uint64, amount decimal.Decimal) (auction.Receipt, error) {
	receipt, err := s.engine.Bid(ctx, ticketID, caller, amount)
	if err != nil {
		return auction.Receipt{}, err
	}

	tid := int64(ticketID)
	bidder := receipt.Bidder
	s.journal.Record(ctx, journal.Entry{
		Kind:     journal.KindBid,
		TicketID: &tid,
		FromAddr: &bidder,
		Amount:   receipt.Amount,
	})
	s.metrics.RecordBid()
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventBidPlaced,
		Timestamp: time.Now().UTC(),
		Payload: events.BidPlacedPayload{
			TicketID: ticketID,
			Bidder:   receipt.Bidder,
			Amount:   receipt.Amount,
		},
	})
	if receipt.Outbid != nil {
		outbid := receipt.Outbid.Bidder
		s.journal.Record(ctx, journal.Entry{
			Kind:     journal.KindRefund,
			TicketID: &tid,
			ToAddr:   &outbid,
			Amount:   receipt.Outbid.Amount,
		})
		s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBidOutbid,
			Timestamp: time.Now().UTC(),
			Payload: events.BidOutbidPayload{
				TicketID: ticketID,
				Bidder:   outbid,
				Refunded: receipt.Outbid.Amount,
			},
		})
	}
	return receipt, nil
}

// EndAuction settles an ended lot.
func (s *AuctionService) EndAuction(ctx context.Context, caller string, ticketID uint64) (auction.Settlement, error) {
	settlement, err := s.engine.Close(ticketID, caller)
	if err != nil {
		return auction.Settlement{}, err
	}

	tid := int64(ticketID)
	winner := settlement.Winner
	seller := settlement.Seller
	s.journal.Record(ctx, journal.Entry{
		Kind:     journal.KindSettlement,
		TicketID: &tid,
		FromAddr: &winner,
		ToAddr:   &seller,
		Amount:   settlement.Price,
	})
	s.metrics.RecordClose()
	s.metrics.SetOpenAuctions(s.engine.OpenCount())
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAuctionClosed,
		Timestamp: time.Now().UTC(),
		Payload: events.AuctionClosedPayload{
			TicketID: ticketID,
			Seller:   seller,
			Winner:   winner,
			Price:    settlement.Price,
		},
	})
	return settlement, nil
}

// ReclaimBid refunds the caller's stranded winning bid on a lot whose
// seller no longer owns the ticket and can never settle.
func (s *AuctionService) ReclaimBid(ctx context.Context, caller string, ticketID uint64) (auction.Refund, error) {
	refund, err := s.engine.Reclaim(ticketID, caller)
	if err != nil {
		return auction.Refund{}, err
	}

	tid := int64(ticketID)
	bidder := refund.Bidder
	s.journal.Record(ctx, journal.Entry{
		Kind:     journal.KindRefund,
		TicketID: &tid,
		ToAddr:   &bidder,
		Amount:   refund.Amount,
	})
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventBidReclaimed,
		Timestamp: time.Now().UTC(),
		Payload: events.BidReclaimedPayload{
			TicketID: ticketID,
			Bidder:   bidder,
			Refunded: refund.Amount,
		},
	})
	return refund, nil
}

// GetAuction returns the lot for a ticket along with its live openness.
func (s *AuctionService) GetAuction(ticketID uint64) (domain.Auction, bool, error) {
	a, err := s.engine.Get(ticketID)
	if err != nil {
		return domain.Auction{}, false, err
	}
	return a, s.engine.IsOpen(ticketID), nil
}
