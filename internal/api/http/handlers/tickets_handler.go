package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-auction/internal/api/dto"
	"github.com/spec-kit/ticket-auction/internal/auth"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/service"
	apperrors "github.com/spec-kit/ticket-auction/pkg/errorutil"
)

// TicketsHandler manages direct ticket endpoints.
type TicketsHandler struct {
	ticketing *service.TicketingService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketing *service.TicketingService) *TicketsHandler {
	return &TicketsHandler{ticketing: ticketing}
}

// MyTickets GET /tickets.
func (h *TicketsHandler) MyTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	tickets := h.ticketing.MyTickets(principal.Address)
	items := make([]dto.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		items = append(items, ticketResponse(ticket))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.ticketing.GetTicket(ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Transfer POST /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.To == "" {
		return apperrors.NewValidationError("to required", nil)
	}

	if err := h.ticketing.TransferTicket(c.Context(), principal.Address, ticketID, req.To); err != nil {
		return err
	}
	ticket, err := h.ticketing.GetTicket(ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Approve POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Delegate == "" {
		return apperrors.NewValidationError("delegate required", nil)
	}

	if err := h.ticketing.ApproveDelegate(c.Context(), principal.Address, ticketID, req.Delegate); err != nil {
		return err
	}
	ticket, err := h.ticketing.GetTicket(ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func parseTicketID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func ticketResponse(ticket domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:       ticket.ID,
		EventID:  ticket.EventID,
		Owner:    ticket.Owner,
		Approved: ticket.Approved,
	}
}
