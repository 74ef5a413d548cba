package domain

import "time"

// Permission names the capability a grant confers or denies.
type Permission string

const (
	PermLedgerRead    Permission = "ledger:read"
	PermLedgerPost    Permission = "ledger:post"
	PermLedgerReverse Permission = "ledger:reverse"
	PermAccountManage Permission = "account:manage"
	PermRBACManage    Permission = "rbac:manage"
	PermAuditRead     Permission = "audit:read"
)

// GrantScope defines how broadly a grant applies.
type GrantScope string

const (
	ScopeGlobal GrantScope = "GLOBAL" // Covers everything
	ScopeTenant GrantScope = "TENANT" // Covers all objects in one tenant
	ScopeObject GrantScope = "OBJECT" // Covers exactly one object
)

// Specificity ranks scopes for conflict resolution: the most specific
// covering grant wins, and ties resolve to deny.
func (s GrantScope) Specificity() int {
	switch s {
	case ScopeObject:
		return 3
	case ScopeTenant:
		return 2
	case ScopeGlobal:
		return 1
	}
	return 0
}

// GrantEffect is the outcome a grant contributes.
type GrantEffect string

const (
	EffectAllow GrantEffect = "ALLOW"
	EffectDeny  GrantEffect = "DENY"
)

// SubjectKind identifies what a grant is attached to.
type SubjectKind string

const (
	SubjectPrincipal SubjectKind = "PRINCIPAL"
	SubjectRole      SubjectKind = "ROLE"
)

// Role is a named bundle of permissions. Roles may include other roles; the
// inclusion graph must remain acyclic, which is enforced at write time.
type Role struct {
	RoleID      string  `json:"roleID"`             // Primary Key (UUID)
	TenantID    *string `json:"tenantID,omitempty"` // nil for global roles
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsActive    bool    `json:"isActive"` // Soft-disable flag
	AuditFields
}

// RoleInclusion is one edge of the role hierarchy: the parent role includes
// every permission of the included role.
type RoleInclusion struct {
	ParentRoleID   string    `json:"parentRoleID"`
	IncludedRoleID string    `json:"includedRoleID"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
}

// RoleAssignment binds a principal to a role within a tenant. A principal may
// hold multiple roles; effective permissions are the union.
type RoleAssignment struct {
	PrincipalID string    `json:"principalID"`
	RoleID      string    `json:"roleID"`
	TenantID    *string   `json:"tenantID,omitempty"` // nil for global assignments
	AssignedAt  time.Time `json:"assignedAt"`
	AssignedBy  string    `json:"assignedBy"`
}

// ObjectRef identifies one entity targeted by an object-scoped grant.
type ObjectRef struct {
	Type string `json:"type"` // e.g. "account", "journal"
	ID   string `json:"id"`
}

// PermissionGrant assigns (or explicitly denies) a capability to a principal
// or role at global, tenant, or object scope. Object-scoped grants reference
// exactly one existing object in the same tenant.
type PermissionGrant struct {
	GrantID     string      `json:"grantID"` // Primary Key (UUID)
	SubjectKind SubjectKind `json:"subjectKind"`
	SubjectID   string      `json:"subjectID"` // Principal ID or Role ID
	Permission  Permission  `json:"permission"`
	Scope       GrantScope  `json:"scope"`
	Effect      GrantEffect `json:"effect"`
	TenantID    *string     `json:"tenantID,omitempty"` // Required for TENANT and OBJECT scope
	Object      *ObjectRef  `json:"object,omitempty"`   // Required for OBJECT scope
	AuditFields
}

// Covers reports whether the grant applies to a request for permission perm
// against the given tenant and optional object.
func (g PermissionGrant) Covers(perm Permission, tenantID string, object *ObjectRef) bool {
	if g.Permission != perm {
		return false
	}
	switch g.Scope {
	case ScopeGlobal:
		return true
	case ScopeTenant:
		return g.TenantID != nil && *g.TenantID == tenantID
	case ScopeObject:
		if g.TenantID == nil || *g.TenantID != tenantID || g.Object == nil || object == nil {
			return false
		}
		return g.Object.Type == object.Type && g.Object.ID == object.ID
	}
	return false
}
