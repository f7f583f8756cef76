// Package escrow keeps the per-address balance pair that backs auction
// bidding: funds locked behind the current highest bid, and funds safe to
// withdraw. It is pure accounting: it never calls out, and every mutating
// operation either applies fully or not at all.
package escrow

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/ticket-auction/internal/domain"
)

type account struct {
	locked       decimal.Decimal
	withdrawable decimal.Decimal
}

// Book tracks locked and withdrawable balances per address.
type Book struct {
	mu       sync.Mutex
	accounts map[string]*account
}

// NewBook returns an empty balance book.
func NewBook() *Book {
	return &Book{accounts: make(map[string]*account)}
}

func (b *Book) account(addr string) *account {
	acct, ok := b.accounts[addr]
	if !ok {
		acct = &account{locked: decimal.Zero, withdrawable: decimal.Zero}
		b.accounts[addr] = acct
	}
	return acct
}

// Lock adds amount to the address's locked balance. The caller has taken
// custody of the corresponding payment before calling.
func (b *Book) Lock(addr string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(addr)
	acct.locked = acct.locked.Add(amount)
	return nil
}

// UnlockToWithdrawable moves amount from locked to withdrawable for the
// same address, the refund path when a bidder is outbid.
func (b *Book) UnlockToWithdrawable(addr string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(addr)
	if acct.locked.LessThan(amount) {
		return domain.ErrInsufficientLocked
	}
	acct.locked = acct.locked.Sub(amount)
	acct.withdrawable = acct.withdrawable.Add(amount)
	return nil
}

// RelockFromWithdrawable is the exact inverse of UnlockToWithdrawable. The
// auction engine uses it to restore a refunded bidder when accepting the
// incoming payment for the outbidding bid fails.
func (b *Book) RelockFromWithdrawable(addr string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(addr)
	if acct.withdrawable.LessThan(amount) {
		return domain.ErrInsufficientWithdrawable
	}
	acct.withdrawable = acct.withdrawable.Sub(amount)
	acct.locked = acct.locked.Add(amount)
	return nil
}

// CreditWithdrawable adds amount directly to the withdrawable balance,
// used for primary-sale proceeds.
func (b *Book) CreditWithdrawable(addr string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(addr)
	acct.withdrawable = acct.withdrawable.Add(amount)
	return nil
}

// Settle moves amount from the winner's locked balance to the seller's
// withdrawable balance as one step. This is the only way funds cross
// addresses inside the book.
func (b *Book) Settle(from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.account(from)
	if src.locked.LessThan(amount) {
		return domain.ErrInsufficientLocked
	}
	src.locked = src.locked.Sub(amount)
	b.account(to).withdrawable = b.account(to).withdrawable.Add(amount)
	return nil
}

// ReverseSettle undoes a Settle that has not been observed by any other
// operation, restoring the winner's lock when the paired ticket transfer
// fails.
func (b *Book) ReverseSettle(from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	dst := b.account(to)
	if dst.withdrawable.LessThan(amount) {
		return domain.ErrInsufficientWithdrawable
	}
	dst.withdrawable = dst.withdrawable.Sub(amount)
	b.account(from).locked = b.account(from).locked.Add(amount)
	return nil
}

// Withdraw debits the withdrawable balance. The debit is applied before any
// external payout is attempted; a failed payout must not re-credit.
func (b *Book) Withdraw(addr string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.account(addr)
	if acct.withdrawable.LessThan(amount) {
		return domain.ErrInsufficientWithdrawable
	}
	acct.withdrawable = acct.withdrawable.Sub(amount)
	return nil
}

// LockedOf returns the locked balance for addr.
func (b *Book) LockedOf(addr string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acct, ok := b.accounts[addr]; ok {
		return acct.locked
	}
	return decimal.Zero
}

// WithdrawableOf returns the withdrawable balance for addr.
func (b *Book) WithdrawableOf(addr string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acct, ok := b.accounts[addr]; ok {
		return acct.withdrawable
	}
	return decimal.Zero
}

// TotalHeld returns the sum of all locked and withdrawable balances, the
// value currently in the book's custody.
func (b *Book) TotalHeld() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := decimal.Zero
	for _, acct := range b.accounts {
		total = total.Add(acct.locked).Add(acct.withdrawable)
	}
	return total
}
