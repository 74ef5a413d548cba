package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal is the persistence representation of a journal entry header.
type Journal struct {
	JournalID          string
	TenantID           string
	JournalDate        time.Time
	Memo               string
	Status             string
	OriginalJournalID  *string
	ReversingJournalID *string
	IdempotencyKey     *string
	AuditFields
}

// Posting is the persistence representation of one journal line.
type Posting struct {
	PostingID string
	JournalID string
	AccountID string
	Amount    decimal.Decimal
	Side      string
	AuditFields
}
