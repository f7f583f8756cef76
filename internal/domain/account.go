package domain

import "time"

// Account is an authenticated participant. The address doubles as the
// owner key in the ticket ledger and the escrow book.
type Account struct {
	Address      string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
