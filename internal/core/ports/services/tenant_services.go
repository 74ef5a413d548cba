package services

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/dto"
)

// TenantSvcFacade is the tenant partition store: it owns tenant lifecycle and
// is the only component that mints partition handles.
type TenantSvcFacade interface {
	// CreateTenant provisions a tenant and its isolated partition.
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorID string) (*domain.Tenant, error)

	// GetTenantByID retrieves a tenant.
	GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// ResolvePartition maps a tenant ID to its partition handle. Suspended
	// tenants resolve to a read-only handle; disabled tenants do not resolve.
	ResolvePartition(ctx context.Context, tenantID string) (domain.PartitionHandle, error)

	// SuspendTenant blocks new mutating operations for the tenant. Handles
	// resolved before the suspension stay valid for their in-flight request.
	SuspendTenant(ctx context.Context, tenantID string, actorID string) error

	// ReactivateTenant lifts a suspension.
	ReactivateTenant(ctx context.Context, tenantID string, actorID string) error
}
