package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// schema holds the full DDL. Statements are idempotent so startup can
// apply them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
        address       TEXT PRIMARY KEY,
        email         TEXT NOT NULL UNIQUE,
        display_name  TEXT NOT NULL DEFAULT '',
        password_hash TEXT NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS journal_entries (
        id         UUID PRIMARY KEY,
        kind       TEXT NOT NULL,
        ticket_id  BIGINT,
        event_id   TEXT,
        from_addr  TEXT,
        to_addr    TEXT,
        amount     NUMERIC(20,4) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_journal_from ON journal_entries (from_addr, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_to ON journal_entries (to_addr, created_at DESC)`,
}

// RunMigrations applies the schema statements in order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}

	logger.Info("schema applied", zap.Int("statements", len(schema)))
	return nil
}
