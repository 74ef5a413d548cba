package services

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/dto"
)

// LedgerSvcFacade is the orchestration surface the (external) API layer
// consumes. Every call carries an already-authenticated principal and a
// resolved tenant identifier; the facade authorizes first, resolves the
// partition only on allow, executes, and returns typed results.
type LedgerSvcFacade interface {
	OpenAccount(ctx context.Context, principalID, tenantID string, req dto.CreateAccountRequest) (*dto.AccountResponse, error)
	DeactivateAccount(ctx context.Context, principalID, tenantID, accountID string) error
	GetBalance(ctx context.Context, principalID, tenantID, accountID string, asOf *time.Time) (*dto.BalanceResponse, error)
	ListAccounts(ctx context.Context, principalID, tenantID string, limit int, nextToken *string) ([]dto.AccountResponse, *string, error)

	PostEntry(ctx context.Context, principalID, tenantID string, req dto.PostEntryRequest) (*dto.JournalResponse, error)
	ReverseEntry(ctx context.Context, principalID, tenantID, journalID string) (*dto.JournalResponse, error)
	GetEntry(ctx context.Context, principalID, tenantID, journalID string) (*dto.JournalResponse, error)
	ListEntries(ctx context.Context, principalID, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	QueryAudit(ctx context.Context, principalID, tenantID string, params dto.AuditQueryParams) (*dto.ListAuditResponse, error)
	ReconcileAccount(ctx context.Context, principalID, tenantID, accountID string) error
}
