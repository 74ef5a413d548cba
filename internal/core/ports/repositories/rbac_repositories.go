package repositories

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// RBACReader defines read operations over the permission graph.
type RBACReader interface {
	// FindRoleByID retrieves a role by its identifier.
	FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error)

	// FindRoleByName retrieves a role by its unique name, global when tenantID
	// is nil.
	FindRoleByName(ctx context.Context, name string, tenantID *string) (*domain.Role, error)

	// LoadInclusionEdges returns the full role inclusion adjacency
	// (parent role ID -> included role IDs). The graph is small and is
	// validated acyclic at write time.
	LoadInclusionEdges(ctx context.Context) (map[string][]string, error)

	// LoadPermissionSnapshot loads everything needed to resolve one
	// authorization request in a single consistent read: the principal's
	// assignments in the tenant plus global ones, the inclusion adjacency,
	// grants per role, and the principal's direct grants.
	LoadPermissionSnapshot(ctx context.Context, principalID, tenantID string) (*domain.PermissionSnapshot, error)
}

// RBACWriter defines write operations over the permission graph.
type RBACWriter interface {
	// SaveRole persists a new role.
	SaveRole(ctx context.Context, role domain.Role) error

	// SaveRoleInclusion persists one inclusion edge. Cycle rejection happens
	// in the service before this is called.
	SaveRoleInclusion(ctx context.Context, inclusion domain.RoleInclusion) error

	// SaveRoleAssignment binds a principal to a role.
	SaveRoleAssignment(ctx context.Context, assignment domain.RoleAssignment) error

	// SaveGrant persists a permission grant.
	SaveGrant(ctx context.Context, grant domain.PermissionGrant) error

	// DeleteGrant removes a permission grant.
	DeleteGrant(ctx context.Context, grantID string) error
}

// RBACRepositoryFacade combines all permission-graph repository interfaces.
type RBACRepositoryFacade interface {
	RBACReader
	RBACWriter
}
