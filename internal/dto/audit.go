package dto

import (
	"encoding/json"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
)

// AuditQueryParams narrows an audit trail query. Zero values mean no filter.
type AuditQueryParams struct {
	FromSeq   int64              `json:"fromSeq"`
	ToSeq     int64              `json:"toSeq"`
	From      time.Time          `json:"from"`
	To        time.Time          `json:"to"`
	ActorID   string             `json:"actorID"`
	Action    domain.AuditAction `json:"action"`
	Limit     int                `json:"limit"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// AuditRecordResponse is the outward representation of one audit record.
type AuditRecordResponse struct {
	Sequence   int64              `json:"sequence"`
	TenantID   string             `json:"tenantID"`
	ActorID    string             `json:"actorID"`
	Action     domain.AuditAction `json:"action"`
	EntityType string             `json:"entityType"`
	EntityID   string             `json:"entityID"`
	Before     json.RawMessage    `json:"before,omitempty"`
	After      json.RawMessage    `json:"after,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// ListAuditResponse is a page of audit records ordered by sequence number.
type ListAuditResponse struct {
	Records   []AuditRecordResponse `json:"records"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToAuditRecordResponses maps domain audit records to their response form.
func ToAuditRecordResponses(records []domain.AuditRecord) []AuditRecordResponse {
	out := make([]AuditRecordResponse, len(records))
	for i, r := range records {
		out[i] = AuditRecordResponse{
			Sequence:   r.Sequence,
			TenantID:   r.TenantID,
			ActorID:    r.ActorID,
			Action:     r.Action,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Before:     json.RawMessage(r.Before),
			After:      json.RawMessage(r.After),
			CreatedAt:  r.CreatedAt,
		}
	}
	return out
}
