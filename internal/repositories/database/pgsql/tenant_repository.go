package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	"github.com/finledger/finledger_core/internal/models"
	"github.com/finledger/finledger_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTenantRepository manages tenant rows in the shared schema and provisions
// partition schemas.
type PgxTenantRepository struct {
	BaseRepository
}

func newPgxTenantRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *PgxTenantRepository {
	return &PgxTenantRepository{BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout}}
}

var _ portsrepo.TenantRepositoryFacade = (*PgxTenantRepository)(nil)

// SaveTenant inserts the tenant row and provisions its partition schema in
// one transaction, so a half-provisioned tenant can never be observed.
func (r *PgxTenantRepository) SaveTenant(ctx context.Context, tenant domain.Tenant) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelTenant := mapping.ToModelTenant(tenant)
	query := `
		INSERT INTO tenants (tenant_id, name, partition_key, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, query,
		modelTenant.TenantID,
		modelTenant.Name,
		modelTenant.PartitionKey,
		modelTenant.Status,
		modelTenant.CreatedAt,
		modelTenant.CreatedBy,
		modelTenant.LastUpdatedAt,
		modelTenant.LastUpdatedBy,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert tenant "+modelTenant.TenantID, mapped)
	}

	if err := provisionPartition(ctx, tx, tenant.PartitionKey); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindTenantByID retrieves a tenant by its ID.
func (r *PgxTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return r.findTenant(ctx, `tenant_id = $1`, tenantID)
}

// FindTenantByName retrieves a tenant by its unique display name.
func (r *PgxTenantRepository) FindTenantByName(ctx context.Context, name string) (*domain.Tenant, error) {
	return r.findTenant(ctx, `name = $1`, name)
}

func (r *PgxTenantRepository) findTenant(ctx context.Context, where string, arg any) (*domain.Tenant, error) {
	query := `
		SELECT tenant_id, name, partition_key, status, created_at, created_by, last_updated_at, last_updated_by
		FROM tenants
		WHERE ` + where + `;
	`
	var modelTenant models.Tenant
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&modelTenant.TenantID,
		&modelTenant.Name,
		&modelTenant.PartitionKey,
		&modelTenant.Status,
		&modelTenant.CreatedAt,
		&modelTenant.CreatedBy,
		&modelTenant.LastUpdatedAt,
		&modelTenant.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find tenant", mapPgError(err))
	}

	domainTenant := mapping.ToDomainTenant(modelTenant)
	return &domainTenant, nil
}

// UpdateTenantStatus flips the tenant lifecycle status and appends the audit
// record to the tenant's partition in the same transaction. The partition key
// is deliberately not updatable anywhere in this repository.
func (r *PgxTenantRepository) UpdateTenantStatus(ctx context.Context, p domain.PartitionHandle, status domain.TenantStatus, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE tenants
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1;
	`
	ct, err := tx.Exec(ctx, query, p.TenantID(), string(status), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update tenant status "+p.TenantID(), mapPgError(err))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := appendAuditInTx(ctx, tx, p, audit, updatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
