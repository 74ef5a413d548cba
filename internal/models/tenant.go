package models

// TenantStatus mirrors the domain lifecycle states at the persistence layer.
type TenantStatus string

const (
	TenantActive    TenantStatus = "ACTIVE"
	TenantSuspended TenantStatus = "SUSPENDED"
	TenantDisabled  TenantStatus = "DISABLED"
)

// Tenant is the persistence representation of a tenant row in the shared schema.
type Tenant struct {
	TenantID     string
	Name         string
	PartitionKey string // Schema name; immutable once assigned
	Status       TenantStatus
	AuditFields
}
