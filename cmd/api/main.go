package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-auction/internal/api/http"
	"github.com/spec-kit/ticket-auction/internal/api/http/handlers"
	"github.com/spec-kit/ticket-auction/internal/auction"
	"github.com/spec-kit/ticket-auction/internal/auth"
	"github.com/spec-kit/ticket-auction/internal/clock"
	"github.com/spec-kit/ticket-auction/internal/config"
	"github.com/spec-kit/ticket-auction/internal/escrow"
	"github.com/spec-kit/ticket-auction/internal/events"
	"github.com/spec-kit/ticket-auction/internal/journal"
	"github.com/spec-kit/ticket-auction/internal/ledger"
	"github.com/spec-kit/ticket-auction/internal/observability"
	"github.com/spec-kit/ticket-auction/internal/payment"
	"github.com/spec-kit/ticket-auction/internal/persistence"
	"github.com/spec-kit/ticket-auction/internal/registry"
	"github.com/spec-kit/ticket-auction/internal/repository"
	"github.com/spec-kit/ticket-auction/internal/service"
	"github.com/spec-kit/ticket-auction/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	systemClock := clock.NewSystem()

	tickets := ledger.New()
	book := escrow.NewBook()
	gateway := payment.NewInProcess(logger)
	eventRegistry := registry.New(tickets, book, gateway, systemClock, logger)
	engine := auction.NewEngine(auction.Dependencies{
		Tickets: tickets,
		Escrow:  book,
		Gateway: gateway,
		Clock:   systemClock,
		Logger:  logger,
	}, auction.Config{
		MinDuration: cfg.Auction.MinDuration(),
		GraceWindow: cfg.Auction.GraceWindow(),
	})

	auditJournal := journal.New(pg.PoolHandle(), logger)

	var accounts repository.AccountRepository
	if pg.PoolHandle() != nil {
		accounts = repository.NewAccountRepository(pg.PoolHandle())
	} else {
		accounts = repository.NewMemoryAccountRepository()
	}

	authService := service.NewAuthService(cfg.Auth, accounts)
	ticketingService := service.NewTicketingService(service.TicketingDependencies{
		Registry:   eventRegistry,
		Tickets:    tickets,
		Journal:    auditJournal,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	auctionService := service.NewAuctionService(service.AuctionDependencies{
		Engine:     engine,
		Journal:    auditJournal,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	walletService := service.NewWalletService(service.WalletDependencies{
		Book:       book,
		Gateway:    gateway,
		Journal:    auditJournal,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	sweeper := worker.NewSweeper(engine, dispatcher, metrics, logger, cfg.Auction.SweepInterval())
	sweeper.Start(ctx)
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Accounts:       handlers.NewAccountsHandler(authService),
		Events:         handlers.NewEventsHandler(ticketingService),
		Tickets:        handlers.NewTicketsHandler(ticketingService),
		Auctions:       handlers.NewAuctionsHandler(auctionService),
		Wallet:         handlers.NewWalletHandler(walletService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		RateLimiter:    httptransport.NewRateLimiter(rdb.Client, cfg.Limits, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
