package domain

// TenantStatus defines the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantActive    TenantStatus = "ACTIVE"
	TenantSuspended TenantStatus = "SUSPENDED" // New mutations blocked; reads still allowed
	TenantDisabled  TenantStatus = "DISABLED"
)

// Tenant represents an isolated organization. Each tenant owns a dedicated
// data partition (a PostgreSQL schema) identified by PartitionKey.
type Tenant struct {
	TenantID     string       `json:"tenantID"`     // Primary Key (UUID)
	Name         string       `json:"name"`         // Unique display name
	PartitionKey string       `json:"partitionKey"` // Schema name; immutable once assigned
	Status       TenantStatus `json:"status"`
	AuditFields
}

// PartitionHandle is an opaque capability granting access to exactly one
// tenant's partition. Fields are unexported so callers cannot substitute a
// foreign tenant identifier for the partition it addresses; the only way to
// obtain a handle is through the tenant service.
type PartitionHandle struct {
	tenantID string
	schema   string
	readOnly bool
}

// NewPartitionHandle binds a tenant to its partition schema. Intended for the
// tenant partition store only.
func NewPartitionHandle(tenantID, schema string, readOnly bool) PartitionHandle {
	return PartitionHandle{tenantID: tenantID, schema: schema, readOnly: readOnly}
}

// TenantID returns the tenant this handle is scoped to.
func (h PartitionHandle) TenantID() string { return h.tenantID }

// Schema returns the partition schema name all queries must be qualified with.
func (h PartitionHandle) Schema() string { return h.schema }

// ReadOnly reports whether the handle permits only read access. Handles
// resolved for suspended tenants are read-only.
func (h PartitionHandle) ReadOnly() bool { return h.readOnly }

// IsZero reports whether the handle was never bound to a partition.
func (h PartitionHandle) IsZero() bool { return h.tenantID == "" || h.schema == "" }
