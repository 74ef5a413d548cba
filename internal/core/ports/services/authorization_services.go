package services

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/dto"
)

// AuthorizationSvcFacade resolves allow/deny decisions over the permission
// graph and manages the graph itself.
type AuthorizationSvcFacade interface {
	// Authorize resolves whether the principal may perform permission within
	// the tenant, optionally against one specific object. Returns nil on
	// allow and ErrForbidden on deny; it is a pure decision with no side
	// effects, valid only for the current request.
	Authorize(ctx context.Context, principalID, tenantID string, permission domain.Permission, object *domain.ObjectRef) error

	// CreateRole creates a tenant-scoped or global role.
	CreateRole(ctx context.Context, req dto.CreateRoleRequest, actorID string) (*domain.Role, error)

	// GetRoleByName retrieves a role by its unique name, global when tenantID
	// is nil.
	GetRoleByName(ctx context.Context, name string, tenantID *string) (*domain.Role, error)

	// AddRoleInclusion adds one hierarchy edge, rejecting any edge that would
	// close a cycle.
	AddRoleInclusion(ctx context.Context, req dto.AddRoleInclusionRequest, actorID string) error

	// AssignRole binds a principal to a role.
	AssignRole(ctx context.Context, req dto.AssignRoleRequest, actorID string) error

	// Grant creates a permission grant. Object-scoped grants must reference
	// an existing object in the same tenant.
	Grant(ctx context.Context, req dto.GrantRequest, actorID string) (*domain.PermissionGrant, error)

	// Revoke removes a permission grant.
	Revoke(ctx context.Context, grantID string, actorID string) error
}
