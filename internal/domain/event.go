package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a primary-sale listing: a named pool of mintable tickets.
type Event struct {
	ID        string
	Name      string
	Creator   string
	Price     decimal.Decimal
	Remaining int64
	CreatedAt time.Time
}

// EventID derives the deterministic identifier for an event from its
// name and creator. Creating the same event twice yields the same id.
func EventID(name, creator string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + creator))
	return hex.EncodeToString(sum[:16])
}
