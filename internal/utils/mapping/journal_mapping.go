package mapping

import (
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/models"
)

// ToModelJournal converts a domain JournalEntry to its persistence representation.
func ToModelJournal(j domain.JournalEntry) models.Journal {
	m := models.Journal{
		JournalID:          j.JournalID,
		TenantID:           j.TenantID,
		JournalDate:        j.JournalDate,
		Memo:               j.Memo,
		Status:             string(j.Status),
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		AuditFields:        toModelAuditFields(j.AuditFields),
	}
	if j.IdempotencyKey != "" {
		key := j.IdempotencyKey
		m.IdempotencyKey = &key
	}
	return m
}

// ToDomainJournal converts a persistence Journal to its domain representation.
func ToDomainJournal(j models.Journal) domain.JournalEntry {
	d := domain.JournalEntry{
		JournalID:          j.JournalID,
		TenantID:           j.TenantID,
		JournalDate:        j.JournalDate,
		Memo:               j.Memo,
		Status:             domain.JournalStatus(j.Status),
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		AuditFields:        toDomainAuditFields(j.AuditFields),
	}
	if j.IdempotencyKey != nil {
		d.IdempotencyKey = *j.IdempotencyKey
	}
	return d
}

// ToModelPosting converts a domain Posting to its persistence representation.
func ToModelPosting(p domain.Posting) models.Posting {
	return models.Posting{
		PostingID:   p.PostingID,
		JournalID:   p.JournalID,
		AccountID:   p.AccountID,
		Amount:      p.Amount,
		Side:        string(p.Side),
		AuditFields: toModelAuditFields(p.AuditFields),
	}
}

// ToDomainPosting converts a persistence Posting to its domain representation.
func ToDomainPosting(p models.Posting) domain.Posting {
	return domain.Posting{
		PostingID:   p.PostingID,
		JournalID:   p.JournalID,
		AccountID:   p.AccountID,
		Amount:      p.Amount,
		Side:        domain.PostingSide(p.Side),
		AuditFields: toDomainAuditFields(p.AuditFields),
	}
}
