// Package journal keeps an append-only audit trail of every value
// movement the service applies. Entries are written after the in-memory
// books have committed; the journal is an observer, never a participant.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Kind labels what moved value.
type Kind string

const (
	KindPrimarySale Kind = "primary_sale"
	KindBid         Kind = "bid"
	KindRefund      Kind = "refund"
	KindSettlement  Kind = "settlement"
	KindWithdrawal  Kind = "withdrawal"
)

// Entry is one recorded value movement.
type Entry struct {
	ID        string
	Kind      Kind
	TicketID  *int64
	EventID   *string
	FromAddr  *string
	ToAddr    *string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Journal persists entries to Postgres. With no pool configured it
// degrades to a no-op so the service can run bookless in development.
type Journal struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New constructs a journal over the given pool; pool may be nil.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Journal {
	return &Journal{pool: pool, logger: logger}
}

// Record appends an entry. The write is best-effort: the movement it
// describes has already been applied, so a journal failure is logged
// rather than surfaced to the caller.
func (j *Journal) Record(ctx context.Context, entry Entry) {
	if j == nil || j.pool == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO journal_entries (id, kind, ticket_id, event_id, from_addr, to_addr, amount, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`
	if _, err := j.pool.Exec(ctx, query,
		entry.ID,
		string(entry.Kind),
		entry.TicketID,
		entry.EventID,
		entry.FromAddr,
		entry.ToAddr,
		entry.Amount,
	); err != nil {
		j.logger.Warn("failed to record journal entry",
			zap.String("kind", string(entry.Kind)),
			zap.Error(err),
		)
	}
}

// ListByAddress returns the most recent entries touching addr.
func (j *Journal) ListByAddress(ctx context.Context, addr string, limit int) ([]Entry, error) {
	if j == nil || j.pool == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, kind, ticket_id, event_id, from_addr, to_addr, amount, created_at
        FROM journal_entries
        WHERE from_addr=$1 OR to_addr=$1
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := j.pool.Query(ctx, query, addr, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var entry Entry
		var kind string
		if err := rows.Scan(
			&entry.ID,
			&kind,
			&entry.TicketID,
			&entry.EventID,
			&entry.FromAddr,
			&entry.ToAddr,
			&entry.Amount,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Kind = Kind(kind)
		result = append(result, entry)
	}
	return result, rows.Err()
}
