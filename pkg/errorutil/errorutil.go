package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/ticket-auction/internal/domain"
)

// DomainError standardizes application errors for the transport layer.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// coreMapping pairs each core sentinel with its transport representation.
var coreMapping = []struct {
	target error
	code   string
	status int
}{
	{domain.ErrTicketNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrEventNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrAuctionNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrAccountNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrNotOwner, "NOT_OWNER", http.StatusForbidden},
	{domain.ErrNotAuthorized, "NOT_AUTHORIZED", http.StatusForbidden},
	{domain.ErrInvalidApproval, "INVALID_APPROVAL", http.StatusBadRequest},
	{domain.ErrAuctionAlreadyOpen, "AUCTION_ALREADY_OPEN", http.StatusConflict},
	{domain.ErrAuctionNotOpen, "AUCTION_NOT_OPEN", http.StatusConflict},
	{domain.ErrAuctionGraceOver, "AUCTION_EXPIRING_GRACE", http.StatusConflict},
	{domain.ErrAuctionStillOpen, "AUCTION_STILL_OPEN", http.StatusConflict},
	{domain.ErrSellerCannotBid, "SELLER_CANNOT_BID", http.StatusForbidden},
	{domain.ErrBidTooLow, "BID_TOO_LOW", http.StatusUnprocessableEntity},
	{domain.ErrNoSuccessfulBid, "NO_SUCCESSFUL_BID", http.StatusConflict},
	{domain.ErrInvalidDuration, "INVALID_DURATION", http.StatusBadRequest},
	{domain.ErrInsufficientLocked, "INSUFFICIENT_LOCKED", http.StatusUnprocessableEntity},
	{domain.ErrInsufficientWithdrawable, "INSUFFICIENT_WITHDRAWABLE", http.StatusUnprocessableEntity},
	{domain.ErrInvalidAmount, "VALIDATION_FAILED", http.StatusBadRequest},
	{domain.ErrEventExists, "CONFLICT", http.StatusConflict},
	{domain.ErrSoldOut, "CONFLICT", http.StatusConflict},
	{domain.ErrInsufficientPayment, "VALIDATION_FAILED", http.StatusUnprocessableEntity},
	{domain.ErrPaymentTransferFailed, "PAYMENT_TRANSFER_FAILED", http.StatusBadGateway},
	{domain.ErrEmailTaken, "CONFLICT", http.StatusConflict},
	{domain.ErrInvalidCredentials, "UNAUTHORIZED", http.StatusUnauthorized},
}

// ToDomainError converts core and generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, m := range coreMapping {
		if errors.Is(err, m.target) {
			return &DomainError{
				Code:       m.code,
				Message:    m.target.Error(),
				HTTPStatus: m.status,
				Err:        err,
			}
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
