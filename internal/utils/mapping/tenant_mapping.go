package mapping

import (
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/models"
)

// ToModelTenant converts a domain Tenant to its persistence representation.
func ToModelTenant(t domain.Tenant) models.Tenant {
	return models.Tenant{
		TenantID:     t.TenantID,
		Name:         t.Name,
		PartitionKey: t.PartitionKey,
		Status:       models.TenantStatus(t.Status),
		AuditFields:  toModelAuditFields(t.AuditFields),
	}
}

// ToDomainTenant converts a persistence Tenant to its domain representation.
func ToDomainTenant(t models.Tenant) domain.Tenant {
	return domain.Tenant{
		TenantID:     t.TenantID,
		Name:         t.Name,
		PartitionKey: t.PartitionKey,
		Status:       domain.TenantStatus(t.Status),
		AuditFields:  toDomainAuditFields(t.AuditFields),
	}
}
