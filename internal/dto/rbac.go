package dto

import "github.com/finledger/finledger_core/internal/core/domain"

// CreateRoleRequest carries the payload for creating a role.
type CreateRoleRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	TenantID    *string `json:"tenantID,omitempty"` // nil creates a global role
}

// AddRoleInclusionRequest adds one edge to the role hierarchy.
type AddRoleInclusionRequest struct {
	ParentRoleID   string `json:"parentRoleID" validate:"required"`
	IncludedRoleID string `json:"includedRoleID" validate:"required,nefield=ParentRoleID"`
}

// AssignRoleRequest binds a principal to a role within a tenant.
type AssignRoleRequest struct {
	PrincipalID string  `json:"principalID" validate:"required"`
	RoleID      string  `json:"roleID" validate:"required"`
	TenantID    *string `json:"tenantID,omitempty"` // nil makes a global assignment
}

// GrantRequest carries the payload for creating a permission grant.
type GrantRequest struct {
	SubjectKind domain.SubjectKind `json:"subjectKind" validate:"required,oneof=PRINCIPAL ROLE"`
	SubjectID   string             `json:"subjectID" validate:"required"`
	Permission  domain.Permission  `json:"permission" validate:"required"`
	Scope       domain.GrantScope  `json:"scope" validate:"required,oneof=GLOBAL TENANT OBJECT"`
	Effect      domain.GrantEffect `json:"effect" validate:"required,oneof=ALLOW DENY"`
	TenantID    *string            `json:"tenantID,omitempty"`
	Object      *domain.ObjectRef  `json:"object,omitempty"`
}
