package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data within one partition.
type JournalReader interface {
	// FindJournalByID retrieves a journal entry header by its identifier.
	FindJournalByID(ctx context.Context, p domain.PartitionHandle, journalID string) (*domain.JournalEntry, error)

	// FindJournalByIdempotencyKey retrieves the entry previously posted with
	// the given idempotency key, if any.
	FindJournalByIdempotencyKey(ctx context.Context, p domain.PartitionHandle, key string) (*domain.JournalEntry, error)

	// FindPostingsByJournalID retrieves all postings of one journal entry.
	FindPostingsByJournalID(ctx context.Context, p domain.PartitionHandle, journalID string) ([]domain.Posting, error)

	// FindPostingsByAccountID retrieves the full posting history of an
	// account up to asOf (all history when asOf is nil), ordered by creation
	// time. Used for balance replay and reconciliation.
	FindPostingsByAccountID(ctx context.Context, p domain.PartitionHandle, accountID string, asOf *time.Time) ([]domain.Posting, error)

	// ListJournals retrieves a token-paginated journal listing.
	ListJournals(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)

	// ListPostingsByAccountID retrieves a token-paginated posting listing for
	// one account.
	ListPostingsByAccountID(ctx context.Context, p domain.PartitionHandle, accountID string, limit int, nextToken *string) ([]domain.Posting, *string, error)
}

// JournalWriter defines the atomic mutation operations of the ledger engine.
// Each call is one database transaction: journal insert, row locks on every
// touched account, posting inserts, balance deltas, and exactly one audit
// record with the next per-tenant sequence number. Lock acquisition beyond
// the configured timeout fails with ErrConflictRetryable; nothing partial is
// ever observable.
type JournalWriter interface {
	// SaveJournal persists a journal entry with its postings and applies the
	// balance deltas. Fails with ErrDuplicate if the idempotency key was
	// already used.
	SaveJournal(ctx context.Context, p domain.PartitionHandle, journal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error

	// SaveReversal persists a compensating journal entry and, in the same
	// transaction, marks the original entry REVERSED and links the pair.
	SaveReversal(ctx context.Context, p domain.PartitionHandle, reversal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, originalJournalID string, audit domain.AuditRecord) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
