package models

import "time"

// Role is the persistence representation of a role in the shared schema.
type Role struct {
	RoleID      string
	TenantID    *string // NULL for global roles
	Name        string
	Description string
	IsActive    bool
	AuditFields
}

// RoleInclusion is one edge of the role hierarchy DAG.
type RoleInclusion struct {
	ParentRoleID   string
	IncludedRoleID string
	CreatedAt      time.Time
	CreatedBy      string
}

// RoleAssignment binds a principal to a role within a tenant.
type RoleAssignment struct {
	PrincipalID string
	RoleID      string
	TenantID    *string // NULL for global assignments
	AssignedAt  time.Time
	AssignedBy  string
}

// PermissionGrant is the persistence representation of a capability assignment.
type PermissionGrant struct {
	GrantID     string
	SubjectKind string
	SubjectID   string
	Permission  string
	Scope       string
	Effect      string
	TenantID    *string
	ObjectType  *string
	ObjectID    *string
	AuditFields
}
