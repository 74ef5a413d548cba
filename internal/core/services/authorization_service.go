package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/finledger/finledger_core/internal/platform/logging"
)

var (
	ErrRoleCycle      = errors.New("role inclusion would create a cycle")
	ErrUnknownObject  = errors.New("object-scoped grant references an unknown object")
	ErrScopeMismatch  = errors.New("grant scope and target do not agree")
	ErrRoleTooDeep    = errors.New("role hierarchy exceeds maximum depth")
	ErrRoleNotActive  = errors.New("role is not active")
	ErrTenantMismatch = errors.New("role and assignment belong to different tenants")
)

// maxRoleDepth bounds role expansion. The graph is validated acyclic at write
// time; the bound is a second guard against data modified out of band.
const maxRoleDepth = 32

// authorizationService resolves allow/deny decisions over the permission
// graph and manages the graph itself. Every decision is computed fresh from a
// single consistent snapshot; nothing is cached across requests.
type authorizationService struct {
	rbacRepo   portsrepo.RBACRepositoryFacade
	tenantSvc  portssvc.TenantSvcFacade
	objectRepo portsrepo.AccountReader
}

// NewAuthorizationService creates a new AuthorizationService. The tenant
// service and account reader are used to validate grant targets.
func NewAuthorizationService(rbacRepo portsrepo.RBACRepositoryFacade, tenantSvc portssvc.TenantSvcFacade, objectRepo portsrepo.AccountReader) portssvc.AuthorizationSvcFacade {
	return &authorizationService{
		rbacRepo:   rbacRepo,
		tenantSvc:  tenantSvc,
		objectRepo: objectRepo,
	}
}

var _ portssvc.AuthorizationSvcFacade = (*authorizationService)(nil)

// Authorize resolves whether the principal may perform permission within the
// tenant, optionally against one specific object. The most specific covering
// grant wins; a deny among the most specific covering grants beats any allow
// at the same level; and a principal with no covering grant at all is denied.
func (s *authorizationService) Authorize(ctx context.Context, principalID, tenantID string, permission domain.Permission, object *domain.ObjectRef) error {
	logger := logging.FromContext(ctx)

	snapshot, err := s.rbacRepo.LoadPermissionSnapshot(ctx, principalID, tenantID)
	if err != nil {
		logger.Error("failed to load permission snapshot", slog.String("error", err.Error()))
		return err
	}

	decision := resolveDecision(snapshot, permission, tenantID, object)

	logger.Info("authorization resolved",
		slog.String("permission", string(permission)),
		slog.String("decision", string(decision)))

	if decision != domain.DecisionAllow {
		return fmt.Errorf("%w: principal %s lacks %s in tenant %s", apperrors.ErrForbidden, principalID, permission, tenantID)
	}
	return nil
}

// resolveDecision evaluates one request against a loaded snapshot.
func resolveDecision(snapshot *domain.PermissionSnapshot, permission domain.Permission, tenantID string, object *domain.ObjectRef) domain.Decision {
	roleIDs := expandRoles(snapshot)

	var covering []domain.PermissionGrant
	for _, roleID := range roleIDs {
		for _, grant := range snapshot.RoleGrants[roleID] {
			if grant.Covers(permission, tenantID, object) {
				covering = append(covering, grant)
			}
		}
	}
	for _, grant := range snapshot.PrincipalGrants {
		if grant.Covers(permission, tenantID, object) {
			covering = append(covering, grant)
		}
	}

	if len(covering) == 0 {
		return domain.DecisionDeny
	}

	maxSpecificity := 0
	for _, grant := range covering {
		if sp := grant.Scope.Specificity(); sp > maxSpecificity {
			maxSpecificity = sp
		}
	}
	for _, grant := range covering {
		if grant.Scope.Specificity() == maxSpecificity && grant.Effect == domain.EffectDeny {
			return domain.DecisionDeny
		}
	}
	return domain.DecisionAllow
}

// expandRoles walks the inclusion graph from the principal's assigned roles,
// returning every transitively included role. The visited set makes the walk
// terminate even on a corrupted graph; the depth bound caps pathological
// chains.
func expandRoles(snapshot *domain.PermissionSnapshot) []string {
	visited := make(map[string]bool)
	var out []string

	var walk func(roleID string, depth int)
	walk = func(roleID string, depth int) {
		if visited[roleID] || depth > maxRoleDepth {
			return
		}
		visited[roleID] = true
		out = append(out, roleID)
		for _, included := range snapshot.Inclusions[roleID] {
			walk(included, depth+1)
		}
	}

	for _, assignment := range snapshot.Assignments {
		walk(assignment.RoleID, 0)
	}
	return out
}

// CreateRole creates a tenant-scoped or global role.
func (s *authorizationService) CreateRole(ctx context.Context, req dto.CreateRoleRequest, actorID string) (*domain.Role, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.TenantID != nil {
		if _, err := s.tenantSvc.GetTenantByID(ctx, *req.TenantID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	role := domain.Role{
		RoleID:      uuid.NewString(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.rbacRepo.SaveRole(ctx, role); err != nil {
		logger.Error("failed to create role", slog.String("role_name", req.Name), slog.String("error", err.Error()))
		return nil, err
	}
	return &role, nil
}

// GetRoleByName retrieves a role by its unique name, global when tenantID is
// nil.
func (s *authorizationService) GetRoleByName(ctx context.Context, name string, tenantID *string) (*domain.Role, error) {
	return s.rbacRepo.FindRoleByName(ctx, name, tenantID)
}

// AddRoleInclusion adds one hierarchy edge after verifying both roles exist
// and the edge keeps the graph acyclic.
func (s *authorizationService) AddRoleInclusion(ctx context.Context, req dto.AddRoleInclusionRequest, actorID string) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	if _, err := s.rbacRepo.FindRoleByID(ctx, req.ParentRoleID); err != nil {
		return err
	}
	if _, err := s.rbacRepo.FindRoleByID(ctx, req.IncludedRoleID); err != nil {
		return err
	}

	edges, err := s.rbacRepo.LoadInclusionEdges(ctx)
	if err != nil {
		return err
	}
	if reaches(edges, req.IncludedRoleID, req.ParentRoleID) {
		return fmt.Errorf("%w: %s already reaches %s", ErrRoleCycle, req.IncludedRoleID, req.ParentRoleID)
	}

	inclusion := domain.RoleInclusion{
		ParentRoleID:   req.ParentRoleID,
		IncludedRoleID: req.IncludedRoleID,
		CreatedAt:      time.Now(),
		CreatedBy:      actorID,
	}
	return s.rbacRepo.SaveRoleInclusion(ctx, inclusion)
}

// reaches reports whether `to` is reachable from `from` along inclusion edges.
func reaches(edges map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == to {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true
		stack = append(stack, edges[node]...)
	}
	return false
}

// AssignRole binds a principal to a role within a tenant.
func (s *authorizationService) AssignRole(ctx context.Context, req dto.AssignRoleRequest, actorID string) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	role, err := s.rbacRepo.FindRoleByID(ctx, req.RoleID)
	if err != nil {
		return err
	}
	if !role.IsActive {
		return fmt.Errorf("%w: role %s", ErrRoleNotActive, req.RoleID)
	}
	if role.TenantID != nil {
		if req.TenantID == nil || *req.TenantID != *role.TenantID {
			return fmt.Errorf("%w: role %s belongs to tenant %s", ErrTenantMismatch, role.RoleID, *role.TenantID)
		}
	}
	if req.TenantID != nil {
		if _, err := s.tenantSvc.GetTenantByID(ctx, *req.TenantID); err != nil {
			return err
		}
	}

	assignment := domain.RoleAssignment{
		PrincipalID: req.PrincipalID,
		RoleID:      req.RoleID,
		TenantID:    req.TenantID,
		AssignedAt:  time.Now(),
		AssignedBy:  actorID,
	}
	return s.rbacRepo.SaveRoleAssignment(ctx, assignment)
}

// Grant creates a permission grant. Tenant- and object-scoped grants must
// name an existing tenant, and object-scoped grants must reference an object
// that exists within that tenant.
func (s *authorizationService) Grant(ctx context.Context, req dto.GrantRequest, actorID string) (*domain.PermissionGrant, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	switch req.Scope {
	case domain.ScopeGlobal:
		if req.TenantID != nil || req.Object != nil {
			return nil, fmt.Errorf("%w: global grants carry no tenant or object", ErrScopeMismatch)
		}
	case domain.ScopeTenant:
		if req.TenantID == nil || req.Object != nil {
			return nil, fmt.Errorf("%w: tenant grants need a tenant and no object", ErrScopeMismatch)
		}
	case domain.ScopeObject:
		if req.TenantID == nil || req.Object == nil {
			return nil, fmt.Errorf("%w: object grants need both a tenant and an object", ErrScopeMismatch)
		}
	}

	if req.TenantID != nil {
		if _, err := s.tenantSvc.GetTenantByID(ctx, *req.TenantID); err != nil {
			return nil, err
		}
	}
	if req.Object != nil {
		if err := s.validateObject(ctx, *req.TenantID, *req.Object); err != nil {
			return nil, err
		}
	}
	if req.SubjectKind == domain.SubjectRole {
		if _, err := s.rbacRepo.FindRoleByID(ctx, req.SubjectID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	grant := domain.PermissionGrant{
		GrantID:     uuid.NewString(),
		SubjectKind: req.SubjectKind,
		SubjectID:   req.SubjectID,
		Permission:  req.Permission,
		Scope:       req.Scope,
		Effect:      req.Effect,
		TenantID:    req.TenantID,
		Object:      req.Object,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.rbacRepo.SaveGrant(ctx, grant); err != nil {
		logger.Error("failed to save grant", slog.String("error", err.Error()))
		return nil, err
	}
	return &grant, nil
}

// validateObject verifies an object-scoped grant target exists in the tenant.
func (s *authorizationService) validateObject(ctx context.Context, tenantID string, object domain.ObjectRef) error {
	if object.Type != "account" {
		return fmt.Errorf("%w: unsupported object type %q", apperrors.ErrValidation, object.Type)
	}
	p, err := s.tenantSvc.ResolvePartition(ctx, tenantID)
	if err != nil {
		return err
	}
	if _, err := s.objectRepo.FindAccountByID(ctx, p, object.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s in tenant %s", ErrUnknownObject, object.ID, tenantID)
		}
		return err
	}
	return nil
}

// Revoke removes a permission grant.
func (s *authorizationService) Revoke(ctx context.Context, grantID string, actorID string) error {
	logger := logging.FromContext(ctx)
	if err := s.rbacRepo.DeleteGrant(ctx, grantID); err != nil {
		return err
	}
	logger.Info("grant revoked", slog.String("grant_id", grantID), slog.String("revoked_by", actorID))
	return nil
}
