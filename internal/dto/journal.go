package dto

import (
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingRequest is one line of a PostEntryRequest.
type PostingRequest struct {
	AccountID string             `json:"accountID" validate:"required"`
	Amount    decimal.Decimal    `json:"amount" validate:"required"`
	Side      domain.PostingSide `json:"side" validate:"required,oneof=DEBIT CREDIT"`
}

// PostEntryRequest carries the payload for posting a journal entry.
// IdempotencyKey makes retried posts safe: a second post with the same key
// returns the already-committed entry instead of double-posting.
type PostEntryRequest struct {
	Date           *time.Time       `json:"date,omitempty"`
	Memo           string           `json:"memo" validate:"required,max=1000"`
	IdempotencyKey string           `json:"idempotencyKey" validate:"required,max=128"`
	Postings       []PostingRequest `json:"postings" validate:"required,min=2,dive"`
}

// PostingResponse is the outward representation of one posting line.
type PostingResponse struct {
	PostingID string             `json:"postingID"`
	JournalID string             `json:"journalID"`
	AccountID string             `json:"accountID"`
	Amount    decimal.Decimal    `json:"amount"`
	Side      domain.PostingSide `json:"side"`
	CreatedAt time.Time          `json:"createdAt"`
}

// JournalResponse is the outward representation of a journal entry.
type JournalResponse struct {
	JournalID          string               `json:"journalID"`
	TenantID           string               `json:"tenantID"`
	JournalDate        time.Time            `json:"journalDate"`
	Memo               string               `json:"memo"`
	Status             domain.JournalStatus `json:"status"`
	OriginalJournalID  *string              `json:"originalJournalID,omitempty"`
	ReversingJournalID *string              `json:"reversingJournalID,omitempty"`
	Postings           []PostingResponse    `json:"postings,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	CreatedBy          string               `json:"createdBy"`
}

// ToJournalResponse maps a domain journal entry to its response form.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		TenantID:           j.TenantID,
		JournalDate:        j.JournalDate,
		Memo:               j.Memo,
		Status:             j.Status,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
	if len(j.Postings) > 0 {
		resp.Postings = ToPostingResponses(j.Postings)
	}
	return resp
}

// ToPostingResponses maps domain postings to their response form.
func ToPostingResponses(postings []domain.Posting) []PostingResponse {
	out := make([]PostingResponse, len(postings))
	for i, p := range postings {
		out[i] = PostingResponse{
			PostingID: p.PostingID,
			JournalID: p.JournalID,
			AccountID: p.AccountID,
			Amount:    p.Amount,
			Side:      p.Side,
			CreatedAt: p.CreatedAt,
		}
	}
	return out
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int     `json:"limit"`
	NextToken        *string `json:"nextToken,omitempty"`
	IncludeReversals bool    `json:"includeReversals"`
}

// ListEntriesResponse is a page of journal entries.
type ListEntriesResponse struct {
	Entries   []JournalResponse `json:"entries"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListPostingsParams holds parameters for listing an account's postings.
type ListPostingsParams struct {
	Limit     int     `json:"limit"`
	NextToken *string `json:"nextToken,omitempty"`
}

// ListPostingsResponse is a page of postings.
type ListPostingsResponse struct {
	Postings  []PostingResponse `json:"postings"`
	NextToken *string           `json:"nextToken,omitempty"`
}
