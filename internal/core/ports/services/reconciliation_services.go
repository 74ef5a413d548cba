package services

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// ReconciliationReport summarizes one reconciliation pass over a tenant.
type ReconciliationReport struct {
	Checked   int
	Corrupted []string // account IDs frozen during this pass
}

// ReconciliationSvcFacade recomputes derived balances from the posting
// history and freezes accounts whose cached balance diverges. It detects
// corruption; it never corrects it.
type ReconciliationSvcFacade interface {
	// ReconcileAccount verifies one account. On divergence the account is
	// frozen and ErrCorruption is returned.
	ReconcileAccount(ctx context.Context, p domain.PartitionHandle, accountID string) error

	// ReconcileTenant verifies every account in the partition.
	ReconcileTenant(ctx context.Context, p domain.PartitionHandle) (*ReconciliationReport, error)
}
