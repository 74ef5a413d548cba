package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// TenantReader defines read operations for tenant data.
type TenantReader interface {
	// FindTenantByID retrieves a tenant by its unique identifier.
	FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// FindTenantByName retrieves a tenant by its unique display name.
	FindTenantByName(ctx context.Context, name string) (*domain.Tenant, error)
}

// TenantWriter defines write operations for tenant data.
type TenantWriter interface {
	// SaveTenant persists the tenant row and provisions its partition schema
	// in one transaction. Fails with ErrDuplicate if the name or partition
	// key is taken.
	SaveTenant(ctx context.Context, tenant domain.Tenant) error

	// UpdateTenantStatus flips the tenant lifecycle status and appends the
	// audit record to the tenant's partition in the same transaction.
	UpdateTenantStatus(ctx context.Context, p domain.PartitionHandle, status domain.TenantStatus, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error
}

// TenantRepositoryFacade combines all tenant-related repository interfaces.
type TenantRepositoryFacade interface {
	TenantReader
	TenantWriter
}
