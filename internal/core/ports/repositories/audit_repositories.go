package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// AuditQueryFilter narrows an audit trail query. Zero values mean no filter.
type AuditQueryFilter struct {
	FromSeq int64
	ToSeq   int64
	From    time.Time
	To      time.Time
	ActorID string
	Action  domain.AuditAction
}

// AuditReader defines read operations over a tenant's audit trail. The trail
// is append-only: no writer interface exists because records are only ever
// created inside the mutating transactions of the other repositories.
type AuditReader interface {
	// QueryAuditRecords returns records matching the filter ordered by
	// strictly increasing sequence number, token-paginated and restartable.
	QueryAuditRecords(ctx context.Context, p domain.PartitionHandle, filter AuditQueryFilter, limit int, nextToken *string) ([]domain.AuditRecord, *string, error)

	// LatestSequence returns the highest sequence number appended so far
	// (zero for an empty trail).
	LatestSequence(ctx context.Context, p domain.PartitionHandle) (int64, error)
}
