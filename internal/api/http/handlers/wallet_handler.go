package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-auction/internal/api/dto"
	"github.com/spec-kit/ticket-auction/internal/auth"
	"github.com/spec-kit/ticket-auction/internal/service"
	apperrors "github.com/spec-kit/ticket-auction/pkg/errorutil"
)

// WalletHandler manages balance and withdrawal endpoints.
type WalletHandler struct {
	wallet *service.WalletService
}

// NewWalletHandler constructs handler.
func NewWalletHandler(wallet *service.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// Balances GET /wallet/balances.
func (h *WalletHandler) Balances(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	balances := h.wallet.Balances(principal.Address)
	return c.JSON(fiber.Map{"data": dto.BalancesResponse{
		Locked:       balances.Locked,
		Withdrawable: balances.Withdrawable,
	}})
}

// Withdraw POST /wallet/withdrawals.
func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.wallet.Withdraw(c.Context(), principal.Address, req.Amount); err != nil {
		return err
	}
	balances := h.wallet.Balances(principal.Address)
	return c.JSON(fiber.Map{"data": dto.BalancesResponse{
		Locked:       balances.Locked,
		Withdrawable: balances.Withdrawable,
	}})
}

// History GET /wallet/history.
func (h *WalletHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.wallet.History(c.Context(), principal.Address, limit)
	if err != nil {
		return err
	}
	items := make([]dto.JournalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.JournalEntryResponse{
			ID:        entry.ID,
			Kind:      string(entry.Kind),
			TicketID:  entry.TicketID,
			EventID:   entry.EventID,
			From:      entry.FromAddr,
			To:        entry.ToAddr,
			Amount:    entry.Amount,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
