package domain

import "errors"

// Core failure conditions. Services translate these into transport-level
// errors; within the core they are compared with errors.Is.
var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAccountNotFound = errors.New("account not found")

	ErrNotOwner        = errors.New("caller is not the ticket owner")
	ErrNotAuthorized   = errors.New("caller is not authorized")
	ErrInvalidApproval = errors.New("invalid approval target")

	ErrAuctionAlreadyOpen = errors.New("an open auction already exists for this ticket")
	ErrAuctionNotOpen     = errors.New("no open auction for this ticket")
	ErrAuctionGraceOver   = errors.New("auction grace window has elapsed")
	ErrAuctionStillOpen   = errors.New("auction has not reached its end time")
	ErrSellerCannotBid    = errors.New("seller cannot bid on own auction")
	ErrBidTooLow          = errors.New("bid does not exceed the highest bid")
	ErrNoSuccessfulBid    = errors.New("auction has no successful bid")
	ErrInvalidDuration    = errors.New("auction duration below minimum")

	ErrInsufficientLocked       = errors.New("insufficient locked balance")
	ErrInsufficientWithdrawable = errors.New("insufficient withdrawable balance")
	ErrInvalidAmount            = errors.New("amount must be positive")

	ErrEventExists           = errors.New("event already exists")
	ErrSoldOut               = errors.New("event is sold out")
	ErrInsufficientPayment   = errors.New("payment below ticket price")
	ErrPaymentTransferFailed = errors.New("external payment transfer failed")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
