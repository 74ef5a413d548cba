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

const grantColumns = `grant_id, subject_kind, subject_id, permission, scope, effect, tenant_id, object_type, object_id, created_at, created_by, last_updated_at, last_updated_by`

// PgxRBACRepository persists the permission graph in the shared schema: roles,
// role inclusions, role assignments, and permission grants all live outside
// the tenant partitions because authorization runs before a partition is ever
// resolved.
type PgxRBACRepository struct {
	BaseRepository
}

func newPgxRBACRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *PgxRBACRepository {
	return &PgxRBACRepository{BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout}}
}

var _ portsrepo.RBACRepositoryFacade = (*PgxRBACRepository)(nil)

// SaveRole persists a new role.
func (r *PgxRBACRepository) SaveRole(ctx context.Context, role domain.Role) error {
	m := mapping.ToModelRole(role)
	query := `
		INSERT INTO roles (role_id, tenant_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RoleID,
		m.TenantID,
		m.Name,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert role "+m.RoleID, mapped)
	}
	return nil
}

// FindRoleByID retrieves a role by its identifier.
func (r *PgxRBACRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error) {
	query := `
		SELECT role_id, tenant_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM roles
		WHERE role_id = $1;
	`
	var m models.Role
	err := r.Pool.QueryRow(ctx, query, roleID).Scan(
		&m.RoleID,
		&m.TenantID,
		&m.Name,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find role "+roleID, mapPgError(err))
	}

	domainRole := mapping.ToDomainRole(m)
	return &domainRole, nil
}

// FindRoleByName retrieves a role by its unique name, global when tenantID is
// nil.
func (r *PgxRBACRepository) FindRoleByName(ctx context.Context, name string, tenantID *string) (*domain.Role, error) {
	query := `
		SELECT role_id, tenant_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM roles
		WHERE name = $1
		  AND (($2::uuid IS NULL AND tenant_id IS NULL) OR tenant_id = $2);
	`
	var m models.Role
	err := r.Pool.QueryRow(ctx, query, name, tenantID).Scan(
		&m.RoleID,
		&m.TenantID,
		&m.Name,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find role "+name, mapPgError(err))
	}

	domainRole := mapping.ToDomainRole(m)
	return &domainRole, nil
}

// SaveRoleInclusion persists one inclusion edge. Acyclicity is checked by the
// service before this is called.
func (r *PgxRBACRepository) SaveRoleInclusion(ctx context.Context, inclusion domain.RoleInclusion) error {
	query := `
		INSERT INTO role_inclusions (parent_role_id, included_role_id, created_at, created_by)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query,
		inclusion.ParentRoleID,
		inclusion.IncludedRoleID,
		inclusion.CreatedAt,
		inclusion.CreatedBy,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert role inclusion", mapped)
	}
	return nil
}

// LoadInclusionEdges returns the full role inclusion adjacency.
func (r *PgxRBACRepository) LoadInclusionEdges(ctx context.Context) (map[string][]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT parent_role_id, included_role_id FROM role_inclusions;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query role inclusions", mapPgError(err))
	}
	defer rows.Close()

	edges := make(map[string][]string)
	for rows.Next() {
		var parent, included string
		if err := rows.Scan(&parent, &included); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan role inclusion row", err)
		}
		edges[parent] = append(edges[parent], included)
	}
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading role inclusion rows", rows.Err())
	}
	return edges, nil
}

// SaveRoleAssignment binds a principal to a role.
func (r *PgxRBACRepository) SaveRoleAssignment(ctx context.Context, assignment domain.RoleAssignment) error {
	query := `
		INSERT INTO role_assignments (principal_id, role_id, tenant_id, assigned_at, assigned_by)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		assignment.PrincipalID,
		assignment.RoleID,
		assignment.TenantID,
		assignment.AssignedAt,
		assignment.AssignedBy,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert role assignment", mapped)
	}
	return nil
}

// SaveGrant persists a permission grant.
func (r *PgxRBACRepository) SaveGrant(ctx context.Context, grant domain.PermissionGrant) error {
	m := mapping.ToModelGrant(grant)
	query := `
		INSERT INTO permission_grants (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.GrantID,
		m.SubjectKind,
		m.SubjectID,
		m.Permission,
		m.Scope,
		m.Effect,
		m.TenantID,
		m.ObjectType,
		m.ObjectID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert grant "+m.GrantID, mapped)
	}
	return nil
}

// DeleteGrant removes a permission grant.
func (r *PgxRBACRepository) DeleteGrant(ctx context.Context, grantID string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM permission_grants WHERE grant_id = $1;`, grantID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete grant "+grantID, mapPgError(err))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// LoadPermissionSnapshot gathers everything one authorization decision needs
// inside a single repeatable-read transaction, so all three queries see the
// same committed state of the graph even while grants are being written.
func (r *PgxRBACRepository) LoadPermissionSnapshot(ctx context.Context, principalID, tenantID string) (*domain.PermissionSnapshot, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin snapshot transaction", err)
	}
	defer r.Rollback(ctx, tx)

	snapshot := &domain.PermissionSnapshot{
		Inclusions: make(map[string][]string),
		RoleGrants: make(map[string][]domain.PermissionGrant),
	}

	assignQuery := `
		SELECT a.principal_id, a.role_id, a.tenant_id, a.assigned_at, a.assigned_by
		FROM role_assignments a
		JOIN roles r ON r.role_id = a.role_id AND r.is_active
		WHERE a.principal_id = $1
		  AND (a.tenant_id IS NULL OR a.tenant_id = $2);
	`
	rows, err := tx.Query(ctx, assignQuery, principalID, tenantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query role assignments", mapPgError(err))
	}
	for rows.Next() {
		var m models.RoleAssignment
		if err := rows.Scan(&m.PrincipalID, &m.RoleID, &m.TenantID, &m.AssignedAt, &m.AssignedBy); err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan role assignment row", err)
		}
		snapshot.Assignments = append(snapshot.Assignments, mapping.ToDomainRoleAssignment(m))
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading role assignment rows", rows.Err())
	}

	rows, err = tx.Query(ctx, `SELECT parent_role_id, included_role_id FROM role_inclusions;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query role inclusions", mapPgError(err))
	}
	for rows.Next() {
		var parent, included string
		if err := rows.Scan(&parent, &included); err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan role inclusion row", err)
		}
		snapshot.Inclusions[parent] = append(snapshot.Inclusions[parent], included)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading role inclusion rows", rows.Err())
	}

	grantQuery := `
		SELECT ` + grantColumns + `
		FROM permission_grants
		WHERE (subject_kind = 'ROLE')
		   OR (subject_kind = 'PRINCIPAL' AND subject_id = $1);
	`
	rows, err = tx.Query(ctx, grantQuery, principalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query permission grants", mapPgError(err))
	}
	for rows.Next() {
		var m models.PermissionGrant
		if err := rows.Scan(
			&m.GrantID,
			&m.SubjectKind,
			&m.SubjectID,
			&m.Permission,
			&m.Scope,
			&m.Effect,
			&m.TenantID,
			&m.ObjectType,
			&m.ObjectID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan permission grant row", err)
		}
		grant := mapping.ToDomainGrant(m)
		if grant.SubjectKind == domain.SubjectRole {
			snapshot.RoleGrants[grant.SubjectID] = append(snapshot.RoleGrants[grant.SubjectID], grant)
		} else {
			snapshot.PrincipalGrants = append(snapshot.PrincipalGrants, grant)
		}
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading permission grant rows", rows.Err())
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit snapshot transaction", mapPgError(err))
	}
	return snapshot, nil
}
