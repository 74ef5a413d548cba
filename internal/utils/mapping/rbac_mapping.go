package mapping

import (
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/models"
)

// ToModelRole converts a domain Role to its persistence representation.
func ToModelRole(r domain.Role) models.Role {
	return models.Role{
		RoleID:      r.RoleID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		AuditFields: toModelAuditFields(r.AuditFields),
	}
}

// ToDomainRole converts a persistence Role to its domain representation.
func ToDomainRole(r models.Role) domain.Role {
	return domain.Role{
		RoleID:      r.RoleID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		AuditFields: toDomainAuditFields(r.AuditFields),
	}
}

// ToModelGrant converts a domain PermissionGrant to its persistence representation.
func ToModelGrant(g domain.PermissionGrant) models.PermissionGrant {
	m := models.PermissionGrant{
		GrantID:     g.GrantID,
		SubjectKind: string(g.SubjectKind),
		SubjectID:   g.SubjectID,
		Permission:  string(g.Permission),
		Scope:       string(g.Scope),
		Effect:      string(g.Effect),
		TenantID:    g.TenantID,
		AuditFields: toModelAuditFields(g.AuditFields),
	}
	if g.Object != nil {
		objType := g.Object.Type
		objID := g.Object.ID
		m.ObjectType = &objType
		m.ObjectID = &objID
	}
	return m
}

// ToDomainGrant converts a persistence PermissionGrant to its domain representation.
func ToDomainGrant(g models.PermissionGrant) domain.PermissionGrant {
	d := domain.PermissionGrant{
		GrantID:     g.GrantID,
		SubjectKind: domain.SubjectKind(g.SubjectKind),
		SubjectID:   g.SubjectID,
		Permission:  domain.Permission(g.Permission),
		Scope:       domain.GrantScope(g.Scope),
		Effect:      domain.GrantEffect(g.Effect),
		TenantID:    g.TenantID,
		AuditFields: toDomainAuditFields(g.AuditFields),
	}
	if g.ObjectType != nil && g.ObjectID != nil {
		d.Object = &domain.ObjectRef{Type: *g.ObjectType, ID: *g.ObjectID}
	}
	return d
}

// ToDomainRoleAssignment converts a persistence RoleAssignment to its domain representation.
func ToDomainRoleAssignment(a models.RoleAssignment) domain.RoleAssignment {
	return domain.RoleAssignment{
		PrincipalID: a.PrincipalID,
		RoleID:      a.RoleID,
		TenantID:    a.TenantID,
		AssignedAt:  a.AssignedAt,
		AssignedBy:  a.AssignedBy,
	}
}

// ToDomainRoleInclusion converts a persistence RoleInclusion to its domain representation.
func ToDomainRoleInclusion(i models.RoleInclusion) domain.RoleInclusion {
	return domain.RoleInclusion{
		ParentRoleID:   i.ParentRoleID,
		IncludedRoleID: i.IncludedRoleID,
		CreatedAt:      i.CreatedAt,
		CreatedBy:      i.CreatedBy,
	}
}
