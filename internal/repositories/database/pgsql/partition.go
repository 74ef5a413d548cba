package pgsql

import (
	"context"
	"fmt"
	"regexp"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/jackc/pgx/v5"
)

// partitionKeyPattern matches valid partition schema names: lowercase letter
// first, then lowercase letters, digits or underscores, within the
// PostgreSQL 63-byte identifier limit.
var partitionKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidPartitionKey reports whether the key is usable as a partition schema name.
func ValidPartitionKey(key string) bool {
	return partitionKeyPattern.MatchString(key)
}

// partitionDDL returns the statements that provision one tenant's partition:
// the schema itself plus the ledger tables, the append-only audit trail, and
// the audit sequence head. All ledger state for a tenant lives here; nothing
// is shared with other tenants.
func partitionDDL(schema string) []string {
	s := pgx.Identifier{schema}.Sanitize()
	tbl := func(name string) string { return pgx.Identifier{schema, name}.Sanitize() }
	return []string{
		fmt.Sprintf(`CREATE SCHEMA %s`, s),
		fmt.Sprintf(`CREATE TABLE %s (
			account_id      text PRIMARY KEY,
			tenant_id       text NOT NULL,
			name            text NOT NULL,
			account_type    text NOT NULL,
			normal_side     text NOT NULL,
			description     text NOT NULL DEFAULT '',
			is_active       boolean NOT NULL DEFAULT true,
			is_frozen       boolean NOT NULL DEFAULT false,
			balance         numeric NOT NULL DEFAULT 0,
			created_at      timestamptz NOT NULL,
			created_by      text NOT NULL,
			last_updated_at timestamptz NOT NULL,
			last_updated_by text NOT NULL
		)`, tbl("accounts")),
		fmt.Sprintf(`CREATE TABLE %s (
			journal_id           text PRIMARY KEY,
			tenant_id            text NOT NULL,
			journal_date         timestamptz NOT NULL,
			memo                 text NOT NULL,
			status               text NOT NULL,
			original_journal_id  text,
			reversing_journal_id text,
			idempotency_key      text UNIQUE,
			created_at           timestamptz NOT NULL,
			created_by           text NOT NULL,
			last_updated_at      timestamptz NOT NULL,
			last_updated_by      text NOT NULL
		)`, tbl("journals")),
		fmt.Sprintf(`CREATE TABLE %s (
			posting_id      text PRIMARY KEY,
			journal_id      text NOT NULL REFERENCES %s (journal_id),
			account_id      text NOT NULL REFERENCES %s (account_id),
			amount          numeric NOT NULL CHECK (amount > 0),
			side            text NOT NULL CHECK (side IN ('DEBIT', 'CREDIT')),
			created_at      timestamptz NOT NULL,
			created_by      text NOT NULL,
			last_updated_at timestamptz NOT NULL,
			last_updated_by text NOT NULL
		)`, tbl("postings"), tbl("journals"), tbl("accounts")),
		fmt.Sprintf(`CREATE INDEX %s ON %s (account_id, created_at, posting_id)`,
			pgx.Identifier{schema + "_postings_account_idx"}.Sanitize(), tbl("postings")),
		fmt.Sprintf(`CREATE TABLE %s (
			seq          bigint PRIMARY KEY,
			tenant_id    text NOT NULL,
			actor_id     text NOT NULL,
			action       text NOT NULL,
			entity_type  text NOT NULL,
			entity_id    text NOT NULL,
			before_state jsonb,
			after_state  jsonb,
			created_at   timestamptz NOT NULL
		)`, tbl("audit_records")),
		fmt.Sprintf(`CREATE TABLE %s (
			id  smallint PRIMARY KEY CHECK (id = 1),
			seq bigint NOT NULL
		)`, tbl("audit_head")),
		fmt.Sprintf(`INSERT INTO %s (id, seq) VALUES (1, 0)`, tbl("audit_head")),
	}
}

// provisionPartition executes the partition DDL within the given transaction
// so tenant row and schema appear (or fail) together.
func provisionPartition(ctx context.Context, tx pgx.Tx, schema string) error {
	if !ValidPartitionKey(schema) {
		return fmt.Errorf("%w: invalid partition key %q", apperrors.ErrValidation, schema)
	}
	for _, stmt := range partitionDDL(schema) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return apperrors.NewAppError(500, "failed to provision partition "+schema, mapPgError(err))
		}
	}
	return nil
}
