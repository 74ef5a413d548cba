package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// AccountReader defines read operations for account data within one partition.
// Every method takes the partition handle; repositories address tables only
// through it, never through a raw tenant identifier.
type AccountReader interface {
	// FindAccountByID retrieves a single account from the tenant's partition.
	FindAccountByID(ctx context.Context, p domain.PartitionHandle, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID. Absent IDs
	// are simply missing from the map.
	FindAccountsByIDs(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a token-paginated account listing.
	ListAccounts(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string) ([]domain.Account, *string, error)
}

// AccountWriter defines write operations for account data within one partition.
// Each mutation appends the supplied audit record inside its own transaction;
// the repository assigns the record's sequence number.
type AccountWriter interface {
	// SaveAccount persists a new account and its audit record atomically.
	SaveAccount(ctx context.Context, p domain.PartitionHandle, account domain.Account, audit domain.AuditRecord) error

	// SetAccountActive flips the soft-disable flag.
	SetAccountActive(ctx context.Context, p domain.PartitionHandle, accountID string, active bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error

	// SetAccountFrozen marks an account frozen after a reconciliation
	// mismatch, halting further writes against it.
	SetAccountFrozen(ctx context.Context, p domain.PartitionHandle, accountID string, frozen bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
