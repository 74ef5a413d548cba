package services

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/dto"
)

// AuditSvcFacade exposes read access to a tenant's append-only audit trail.
// There is deliberately no append operation here: records are written only
// inside the mutating transactions of the ledger engine.
type AuditSvcFacade interface {
	// QueryAudit returns audit records matching the filter, ordered by
	// strictly increasing sequence number and restartable via the token.
	QueryAudit(ctx context.Context, p domain.PartitionHandle, params dto.AuditQueryParams) (*dto.ListAuditResponse, error)
}
