package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// PostingSide indicates whether a posting line is a Debit or a Credit.
type PostingSide string

const (
	Debit  PostingSide = "DEBIT"
	Credit PostingSide = "CREDIT"
)

// Opposite returns the mirrored side, used when building compensating entries.
func (s PostingSide) Opposite() PostingSide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// JournalEntry represents a single, balanced financial event composed of
// multiple postings. Entries are immutable once posted; corrections are new
// compensating entries, never edits.
type JournalEntry struct {
	JournalID          string        `json:"journalID"` // Primary Key (UUID)
	TenantID           string        `json:"tenantID"`
	JournalDate        time.Time     `json:"journalDate"`
	Memo               string        `json:"memo"`
	Status             JournalStatus `json:"status"`
	OriginalJournalID  *string       `json:"originalJournalID,omitempty"`  // Set on reversal entries
	ReversingJournalID *string       `json:"reversingJournalID,omitempty"` // Set on reversed entries
	IdempotencyKey     string        `json:"idempotencyKey,omitempty"`
	Postings           []Posting     `json:"postings,omitempty"`
	AuditFields
}

// Posting represents a single line item within a JournalEntry, affecting one account.
type Posting struct {
	PostingID string          `json:"postingID"` // Primary Key (UUID)
	JournalID string          `json:"journalID"`
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"` // Always positive; side carries direction
	Side      PostingSide     `json:"side"`
	AuditFields
}
