package mapping

import (
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/models"
)

// ToDomainAuditRecord converts a persistence AuditRecord to its domain representation.
func ToDomainAuditRecord(r models.AuditRecord) domain.AuditRecord {
	return domain.AuditRecord{
		Sequence:   r.Sequence,
		TenantID:   r.TenantID,
		ActorID:    r.ActorID,
		Action:     domain.AuditAction(r.Action),
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Before:     r.Before,
		After:      r.After,
		CreatedAt:  r.CreatedAt,
	}
}
