package postgres

import (
	"context"
	"fmt"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL UNIQUE,
		public_key  TEXT NOT NULL DEFAULT '',
		balance     BIGINT NOT NULL CHECK (balance >= 0),
		last_nonce  BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_transactions (
		id           TEXT PRIMARY KEY,
		seq          BIGSERIAL UNIQUE,
		from_wallet  TEXT NOT NULL REFERENCES accounts (id),
		to_wallet    TEXT NOT NULL,
		amount       BIGINT NOT NULL CHECK (amount > 0),
		currency     TEXT NOT NULL,
		nonce        BIGINT NOT NULL,
		payload_ts   BIGINT NOT NULL,
		signature    TEXT NOT NULL,
		public_key   TEXT NOT NULL,
		algorithm    TEXT NOT NULL DEFAULT '',
		provenance   TEXT NOT NULL DEFAULT '',
		payload_hash TEXT NOT NULL,
		status       TEXT NOT NULL,
		block_index  BIGINT,
		created_at   TIMESTAMPTZ NOT NULL,
		UNIQUE (from_wallet, nonce)
	)`,
	`CREATE INDEX IF NOT EXISTS ledger_transactions_pending
		ON ledger_transactions (seq) WHERE status = 'PENDING'`,
	`CREATE TABLE IF NOT EXISTS blocks (
		idx         BIGINT PRIMARY KEY,
		merkle_root TEXT NOT NULL,
		sealed_at   BIGINT NOT NULL,
		tx_count    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS merkle_proofs (
		tx_id       TEXT PRIMARY KEY REFERENCES ledger_transactions (id),
		block_index BIGINT NOT NULL REFERENCES blocks (idx),
		proof       JSONB NOT NULL
	)`,
}

// Migrate creates the ledger tables if they do not exist.
func Migrate(ctx context.Context, pool Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
