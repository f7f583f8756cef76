// Package worker hosts background loops. Closing a lot is always an
// explicit caller action; the sweeper only announces lots whose bidding
// window has ended so interested parties come and close them.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-auction/internal/auction"
	"github.com/spec-kit/ticket-auction/internal/events"
	"github.com/spec-kit/ticket-auction/internal/observability"
)

// Sweeper periodically scans for expired, unclosed lots.
type Sweeper struct {
	engine     *auction.Engine
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	interval   time.Duration

	announced map[uint64]struct{}
	stop      chan struct{}
	done      chan struct{}
}

// NewSweeper constructs the sweeper.
func NewSweeper(engine *auction.Engine, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		engine:     engine,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		interval:   interval,
		announced:  make(map[uint64]struct{}),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop halts the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired := s.engine.Expired()
	s.metrics.SetOpenAuctions(s.engine.OpenCount())

	// Track only currently-expired lots so a relisted ticket gets
	// announced again when its next auction ends.
	current := make(map[uint64]struct{}, len(expired))
	for _, a := range expired {
		current[a.TicketID] = struct{}{}
		if _, seen := s.announced[a.TicketID]; seen {
			continue
		}
		s.logger.Info("auction expired awaiting close",
			zap.Uint64("ticket_id", a.TicketID),
			zap.Bool("has_bid", a.HasBid()),
		)
		s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAuctionExpired,
			Timestamp: time.Now().UTC(),
			Payload: events.AuctionExpiredPayload{
				TicketID: a.TicketID,
				EndTime:  a.EndTime,
				HasBid:   a.HasBid(),
			},
		})
	}
	s.announced = current
}
