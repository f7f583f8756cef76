package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-auction/internal/api/dto"
	"github.com/spec-kit/ticket-auction/internal/auth"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/service"
	apperrors "github.com/spec-kit/ticket-auction/pkg/errorutil"
)

// EventsHandler manages primary-market endpoints.
type EventsHandler struct {
	ticketing *service.TicketingService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(ticketing *service.TicketingService) *EventsHandler {
	return &EventsHandler{ticketing: ticketing}
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Quantity <= 0 {
		return apperrors.NewValidationError("name and positive quantity required", nil)
	}

	event, err := h.ticketing.CreateEvent(c.Context(), principal.Address, req.Name, req.Price, req.Quantity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	events := h.ticketing.ListEvents()
	items := make([]dto.EventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, eventResponse(ev))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.ticketing.GetEvent(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// Purchase POST /events/:id/purchase.
func (h *EventsHandler) Purchase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketID, err := h.ticketing.PurchaseTicket(c.Context(), principal.Address, c.Params("id"), req.Payment)
	if err != nil {
		return err
	}
	ticket, err := h.ticketing.GetTicket(ticketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func eventResponse(ev domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:        ev.ID,
		Name:      ev.Name,
		Creator:   ev.Creator,
		Price:     ev.Price,
		Remaining: ev.Remaining,
		CreatedAt: ev.CreatedAt,
	}
}
