package services

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade owns ledger accounts within a resolved partition.
type AccountSvcFacade interface {
	// OpenAccount creates a ledger account, rejecting type/normal-side
	// combinations that contradict accounting convention.
	OpenAccount(ctx context.Context, p domain.PartitionHandle, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// GetAccountByID retrieves one account from the partition.
	GetAccountByID(ctx context.Context, p domain.PartitionHandle, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by ID.
	GetAccountsByIDs(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a token-paginated account listing.
	ListAccounts(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string) ([]domain.Account, *string, error)

	// DeactivateAccount soft-disables an account; accounts are never deleted
	// so audit history stays intact.
	DeactivateAccount(ctx context.Context, p domain.PartitionHandle, accountID string, actorID string) error

	// GetBalance computes the account balance by replaying postings up to
	// asOf (now when nil) along the account's normal side. With no asOf the
	// result must equal the cached balance exactly.
	GetBalance(ctx context.Context, p domain.PartitionHandle, accountID string, asOf *time.Time) (decimal.Decimal, error)
}
