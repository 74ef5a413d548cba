package models

import "time"

// AuditRecord is the persistence representation of one append-only audit row
// within a tenant partition schema.
type AuditRecord struct {
	Sequence   int64
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Before     []byte
	After      []byte
	CreatedAt  time.Time
}
