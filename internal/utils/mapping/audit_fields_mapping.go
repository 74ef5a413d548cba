package mapping

import (
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/models"
)

func toModelAuditFields(f domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     f.CreatedAt,
		CreatedBy:     f.CreatedBy,
		LastUpdatedAt: f.LastUpdatedAt,
		LastUpdatedBy: f.LastUpdatedBy,
	}
}

func toDomainAuditFields(f models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     f.CreatedAt,
		CreatedBy:     f.CreatedBy,
		LastUpdatedAt: f.LastUpdatedAt,
		LastUpdatedBy: f.LastUpdatedBy,
	}
}
