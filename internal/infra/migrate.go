package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
        id UUID PRIMARY KEY,
        code TEXT NOT NULL UNIQUE,
        denom JSONB NOT NULL,
        balance JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS transactions (
        id UUID PRIMARY KEY,
        client_tx_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        status TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (kind, client_tx_id)
    )`,
	`CREATE TABLE IF NOT EXISTS entries (
        id UUID PRIMARY KEY,
        transaction_id UUID NOT NULL REFERENCES transactions (id),
        account_id UUID NOT NULL REFERENCES accounts (id),
        direction TEXT NOT NULL CHECK (direction IN ('credit', 'debit')),
        funds JSONB NOT NULL,
        balance_after JSONB NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS entries_account_idx ON entries (account_id)`,
	`CREATE TABLE IF NOT EXISTS wallets (
        id UUID PRIMARY KEY,
        owner_id UUID NOT NULL,
        account_code TEXT NOT NULL UNIQUE REFERENCES accounts (code),
        denom JSONB NOT NULL,
        status TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS wallets_owner_idx ON wallets (owner_id)`,
}

// Migrate creates the escrow schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i+1, err)
		}
	}
	return tx.Commit(ctx)
}
