package services

import (
	"context"
	"errors"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
)

// Baseline global role names seeded at startup.
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleAuditor    = "auditor"
	RoleViewer     = "viewer"
)

// SeedBaselineRoles creates the global role bundle and its permission grants
// if they do not already exist. The hierarchy is owner > admin > accountant >
// viewer, with auditor > viewer on a separate branch; each role carries only
// the grants its level adds, the rest arrive through inclusion.
func SeedBaselineRoles(ctx context.Context, authSvc portssvc.AuthorizationSvcFacade, actorID string) error {
	roles := []struct {
		name        string
		description string
		grants      []domain.Permission
		includes    []string
	}{
		{RoleViewer, "read-only access to accounts and entries", []domain.Permission{domain.PermLedgerRead}, nil},
		{RoleAuditor, "viewer plus audit trail access", []domain.Permission{domain.PermAuditRead}, []string{RoleViewer}},
		{RoleAccountant, "posts and reverses entries", []domain.Permission{domain.PermLedgerPost, domain.PermLedgerReverse}, []string{RoleViewer}},
		{RoleAdmin, "manages accounts and reads audit", []domain.Permission{domain.PermAccountManage, domain.PermAuditRead}, []string{RoleAccountant}},
		{RoleOwner, "full control including the permission graph", []domain.Permission{domain.PermRBACManage}, []string{RoleAdmin}},
	}

	roleIDs := make(map[string]string, len(roles))
	for _, r := range roles {
		created, err := authSvc.CreateRole(ctx, dto.CreateRoleRequest{Name: r.name, Description: r.description}, actorID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				return err
			}
			// The role survived an earlier run; look it up so the inclusion
			// pass can still repair a partially seeded hierarchy.
			existing, lookupErr := authSvc.GetRoleByName(ctx, r.name, nil)
			if lookupErr != nil {
				return lookupErr
			}
			roleIDs[r.name] = existing.RoleID
			continue
		}
		roleIDs[r.name] = created.RoleID

		for _, perm := range r.grants {
			_, err := authSvc.Grant(ctx, dto.GrantRequest{
				SubjectKind: domain.SubjectRole,
				SubjectID:   created.RoleID,
				Permission:  perm,
				Scope:       domain.ScopeGlobal,
				Effect:      domain.EffectAllow,
			}, actorID)
			if err != nil {
				return err
			}
		}
	}

	for _, r := range roles {
		parentID, ok := roleIDs[r.name]
		if !ok {
			continue
		}
		for _, included := range r.includes {
			includedID, ok := roleIDs[included]
			if !ok {
				continue
			}
			err := authSvc.AddRoleInclusion(ctx, dto.AddRoleInclusionRequest{
				ParentRoleID:   parentID,
				IncludedRoleID: includedID,
			}, actorID)
			if err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
				return err
			}
		}
	}
	return nil
}
