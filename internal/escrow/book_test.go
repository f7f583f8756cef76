package escrow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-auction/internal/domain"
)

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestBook_LockAndUnlock(t *testing.T) {
	book := NewBook()

	require.NoError(t, book.Lock("alice", d(100)))
	assert.True(t, book.LockedOf("alice").Equal(d(100)))
	assert.True(t, book.WithdrawableOf("alice").IsZero())

	require.NoError(t, book.UnlockToWithdrawable("alice", d(100)))
	assert.True(t, book.LockedOf("alice").IsZero())
	assert.True(t, book.WithdrawableOf("alice").Equal(d(100)))
}

func TestBook_UnlockMoreThanLocked(t *testing.T) {
	book := NewBook()
	require.NoError(t, book.Lock("alice", d(50)))

	err := book.UnlockToWithdrawable("alice", d(51))
	assert.ErrorIs(t, err, domain.ErrInsufficientLocked)

	// Failed unlock leaves balances untouched.
	assert.True(t, book.LockedOf("alice").Equal(d(50)))
	assert.True(t, book.WithdrawableOf("alice").IsZero())
}

func TestBook_Withdraw(t *testing.T) {
	book := NewBook()
	require.NoError(t, book.CreditWithdrawable("bob", d(80)))

	require.NoError(t, book.Withdraw("bob", d(30)))
	assert.True(t, book.WithdrawableOf("bob").Equal(d(50)))

	err := book.Withdraw("bob", d(51))
	assert.ErrorIs(t, err, domain.ErrInsufficientWithdrawable)
	assert.True(t, book.WithdrawableOf("bob").Equal(d(50)))
}

func TestBook_WithdrawRejectsNonPositive(t *testing.T) {
	book := NewBook()
	require.NoError(t, book.CreditWithdrawable("bob", d(10)))

	assert.ErrorIs(t, book.Withdraw("bob", d(0)), domain.ErrInvalidAmount)
	assert.ErrorIs(t, book.Withdraw("bob", d(-5)), domain.ErrInvalidAmount)
}

func TestBook_Settle(t *testing.T) {
	book := NewBook()
	require.NoError(t, book.Lock("buyer", d(150)))

	require.NoError(t, book.Settle("buyer", "seller", d(150)))
	assert.True(t, book.LockedOf("buyer").IsZero())
	assert.True(t, book.WithdrawableOf("seller").Equal(d(150)))

	// Settling beyond the locked balance fails without moving anything.
	err := book.Settle("buyer", "seller", d(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientLocked)
	assert.True(t, book.WithdrawableOf("seller").Equal(d(150)))
}

func TestBook_ReverseSettleRestoresLock(t *testing.T) {
	book := NewBook()
	require.NoError(t, book.Lock("buyer", d(150)))
	require.NoError(t, book.Settle("buyer", "seller", d(150)))

	require.NoError(t, book.ReverseSettle("buyer", "seller", d(150)))
	assert.True(t, book.LockedOf("buyer").Equal(d(150)))
	assert.True(t, book.WithdrawableOf("seller").IsZero())
}

func TestBook_RelockFromWithdrawable(t *testing.T) {
	book := NewBook()
	require.NoError(t, book.Lock("alice", d(100)))
	require.NoError(t, book.UnlockToWithdrawable("alice", d(100)))

	require.NoError(t, book.RelockFromWithdrawable("alice", d(100)))
	assert.True(t, book.LockedOf("alice").Equal(d(100)))
	assert.True(t, book.WithdrawableOf("alice").IsZero())
}

func TestBook_Conservation(t *testing.T) {
	book := NewBook()

	// Inflows: two locks and one credit.
	require.NoError(t, book.Lock("a", d(100)))
	require.NoError(t, book.Lock("b", d(150)))
	require.NoError(t, book.CreditWithdrawable("c", d(25)))
	require.True(t, book.TotalHeld().Equal(d(275)))

	// Internal moves never change the total.
	require.NoError(t, book.UnlockToWithdrawable("a", d(100)))
	require.NoError(t, book.Settle("b", "c", d(150)))
	assert.True(t, book.TotalHeld().Equal(d(275)))

	// Withdrawal is the only outflow.
	require.NoError(t, book.Withdraw("a", d(100)))
	assert.True(t, book.TotalHeld().Equal(d(175)))
}
