package domain

import "time"

// AuditAction names the mutation an audit record describes.
type AuditAction string

const (
	AuditAccountOpened      AuditAction = "ACCOUNT_OPENED"
	AuditAccountDeactivated AuditAction = "ACCOUNT_DEACTIVATED"
	AuditAccountFrozen      AuditAction = "ACCOUNT_FROZEN"
	AuditEntryPosted        AuditAction = "ENTRY_POSTED"
	AuditEntryReversed      AuditAction = "ENTRY_REVERSED"
	AuditTenantSuspended    AuditAction = "TENANT_SUSPENDED"
	AuditTenantReactivated  AuditAction = "TENANT_REACTIVATED"
)

// AuditRecord is the immutable log of one committed state change. Records are
// append-only with a strictly increasing sequence number per tenant; no
// update or delete operation exists anywhere in the system.
type AuditRecord struct {
	Sequence   int64       `json:"sequence"` // Monotonic per tenant, gap-free
	TenantID   string      `json:"tenantID"`
	ActorID    string      `json:"actorID"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityID"`
	Before     []byte      `json:"before,omitempty"` // JSON summary of prior state
	After      []byte      `json:"after,omitempty"`  // JSON summary of resulting state
	CreatedAt  time.Time   `json:"createdAt"`
}
