package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status",
		},
		[]string{"path", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	domainErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_errors_total",
			Help: "Domain errors by code",
		},
		[]string{"code"},
	)

	bidsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bids_accepted_total",
			Help: "Accepted auction bids",
		},
	)

	auctionsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auctions_closed_total",
			Help: "Settled auctions",
		},
	)

	withdrawals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Completed withdrawals",
		},
	)

	openAuctions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "open_auctions",
			Help: "Currently open auction lots",
		},
	)

	escrowHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "escrow_held_total",
			Help: "Total value in escrow custody (locked plus withdrawable)",
		},
	)
)

// Metrics is the handle services use to record domain activity.
type Metrics struct{}

// NewMetrics returns the metrics handle. Collectors are registered on the
// default registry at package init.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest observes one finished HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a domain error by taxonomy code.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	domainErrors.WithLabelValues(code).Inc()
}

// RecordBid counts an accepted bid.
func (m *Metrics) RecordBid() {
	if m == nil {
		return
	}
	bidsAccepted.Inc()
}

// RecordClose counts a settled auction.
func (m *Metrics) RecordClose() {
	if m == nil {
		return
	}
	auctionsClosed.Inc()
}

// RecordWithdrawal counts a completed withdrawal.
func (m *Metrics) RecordWithdrawal() {
	if m == nil {
		return
	}
	withdrawals.Inc()
}

// SetOpenAuctions updates the open-lot gauge.
func (m *Metrics) SetOpenAuctions(n int) {
	if m == nil {
		return
	}
	openAuctions.Set(float64(n))
}

// SetEscrowHeld updates the custody gauge.
func (m *Metrics) SetEscrowHeld(total float64) {
	if m == nil {
		return
	}
	escrowHeld.Set(total)
}
