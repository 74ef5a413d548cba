package domain

// Decision is the outcome of one authorization resolution.
type Decision string

const (
	DecisionAllow Decision = "ALLOW"
	DecisionDeny  Decision = "DENY"
)

// PermissionSnapshot is everything the authorization engine needs to resolve
// one request, loaded from the permission graph in a single consistent read
// so role expansion never observes torn state. Decisions derived from it are
// only valid for the lifetime of one request.
type PermissionSnapshot struct {
	// Assignments holds the principal's role assignments within the requested
	// tenant plus any global assignments.
	Assignments []RoleAssignment
	// Inclusions is the full role inclusion adjacency: parent role ID to the
	// role IDs it includes.
	Inclusions map[string][]string
	// RoleGrants maps role ID to the grants attached to that role.
	RoleGrants map[string][]PermissionGrant
	// PrincipalGrants are grants attached directly to the principal.
	PrincipalGrants []PermissionGrant
}
