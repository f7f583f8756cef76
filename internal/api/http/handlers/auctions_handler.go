package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-auction/internal/api/dto"
	"github.com/spec-kit/ticket-auction/internal/auth"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/service"
	apperrors "github.com/spec-kit/ticket-auction/pkg/errorutil"
)

// AuctionsHandler manages resale endpoints.
type AuctionsHandler struct {
	auctions *service.AuctionService
}

// NewAuctionsHandler constructs handler.
func NewAuctionsHandler(auctions *service.AuctionService) *AuctionsHandler {
	return &AuctionsHandler{auctions: auctions}
}

// Create POST /auctions.
func (h *AuctionsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DurationSeconds <= 0 {
		return apperrors.NewValidationError("positive duration_seconds required", nil)
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	a, err := h.auctions.CreateAuction(c.Context(), principal.Address, req.TicketID, duration)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": auctionResponse(a, true)})
}

// Bid POST /auctions/:ticketID/bids.
func (h *AuctionsHandler) Bid(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	ticketID, err := parseAuctionTicketID(c)
	if err != nil {
		return err
	}
	var req dto.BidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.auctions.PlaceBid(c.Context(), principal.Address, ticketID, req.Amount); err != nil {
		return err
	}
	a, open, err := h.auctions.GetAuction(ticketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": auctionResponse(a, open)})
}

// Close POST /auctions/:ticketID/close.
func (h *AuctionsHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	ticketID, err := parseAuctionTicketID(c)
	if err != nil {
		return err
	}

	settlement, err := h.auctions.EndAuction(c.Context(), principal.Address, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettlementResponse{
		TicketID: settlement.TicketID,
		Seller:   settlement.Seller,
		Winner:   settlement.Winner,
		Price:    settlement.Price,
	}})
}

// Reclaim POST /auctions/:ticketID/reclaim.
func (h *AuctionsHandler) Reclaim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	ticketID, err := parseAuctionTicketID(c)
	if err != nil {
		return err
	}

	refund, err := h.auctions.ReclaimBid(c.Context(), principal.Address, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReclaimResponse{
		TicketID: ticketID,
		Bidder:   refund.Bidder,
		Refunded: refund.Amount,
	}})
}

// Get GET /auctions/:ticketID.
func (h *AuctionsHandler) Get(c *fiber.Ctx) error {
	ticketID, err := parseAuctionTicketID(c)
	if err != nil {
		return err
	}
	a, open, err := h.auctions.GetAuction(ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auctionResponse(a, open)})
}

func parseAuctionTicketID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("ticketID"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func auctionResponse(a domain.Auction, open bool) dto.AuctionResponse {
	return dto.AuctionResponse{
		TicketID:      a.TicketID,
		Seller:        a.Seller,
		HighestBidder: a.HighestBidder,
		HighestBid:    a.HighestBid,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Open:          open,
	}
}
