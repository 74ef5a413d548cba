package dto

import (
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// CreateTenantRequest carries the payload for provisioning a tenant.
// PartitionKey is optional; when empty it is derived from the name.
type CreateTenantRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	PartitionKey string `json:"partitionKey" validate:"omitempty,max=63"`
}

// TenantResponse is the outward representation of a tenant.
type TenantResponse struct {
	TenantID     string              `json:"tenantID"`
	Name         string              `json:"name"`
	PartitionKey string              `json:"partitionKey"`
	Status       domain.TenantStatus `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// ToTenantResponse maps a domain tenant to its response form.
func ToTenantResponse(t *domain.Tenant) TenantResponse {
	return TenantResponse{
		TenantID:     t.TenantID,
		Name:         t.Name,
		PartitionKey: t.PartitionKey,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
	}
}
