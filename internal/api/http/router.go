package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/ticket-auction/internal/api/http/handlers"
	"github.com/spec-kit/ticket-auction/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Events         *handlers.EventsHandler
	Tickets        *handlers.TicketsHandler
	Auctions       *handlers.AuctionsHandler
	Wallet         *handlers.WalletHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)

	app.Get("/events", cfg.Events.ListEvents)
	app.Get("/events/:id", cfg.Events.GetEvent)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/events", cfg.Events.CreateEvent)
	protected.Post("/events/:id/purchase", cfg.Events.Purchase)

	protected.Get("/tickets", cfg.Tickets.MyTickets)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/transfer", cfg.Tickets.Transfer)
	protected.Post("/tickets/:id/approve", cfg.Tickets.Approve)

	// Bidding is the hot, abuse-prone path; it carries the per-account
	// rate limit on top of authentication.
	limited := protected.Group("", cfg.RateLimiter.Handle)
	limited.Post("/auctions", cfg.Auctions.Create)
	limited.Post("/auctions/:ticketID/bids", cfg.Auctions.Bid)
	limited.Post("/auctions/:ticketID/close", cfg.Auctions.Close)
	limited.Post("/auctions/:ticketID/reclaim", cfg.Auctions.Reclaim)
	protected.Get("/auctions/:ticketID", cfg.Auctions.Get)

	protected.Get("/wallet/balances", cfg.Wallet.Balances)
	protected.Get("/wallet/history", cfg.Wallet.History)
	limited.Post("/wallet/withdrawals", cfg.Wallet.Withdraw)
}
