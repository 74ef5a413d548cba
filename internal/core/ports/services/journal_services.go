package services

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/dto"
)

// JournalSvcFacade is the posting side of the ledger engine.
type JournalSvcFacade interface {
	// PostEntry validates and atomically persists a balanced journal entry,
	// updating every touched account balance and appending one audit record.
	// A retried request with the same idempotency key returns the entry
	// committed by the first attempt.
	PostEntry(ctx context.Context, p domain.PartitionHandle, req dto.PostEntryRequest, actorID string) (*domain.JournalEntry, error)

	// ReverseEntry creates a compensating entry mirroring the original's
	// postings and marks the original REVERSED. The original is never edited.
	ReverseEntry(ctx context.Context, p domain.PartitionHandle, journalID string, actorID string) (*domain.JournalEntry, error)

	// GetEntryByID retrieves a journal entry with its postings.
	GetEntryByID(ctx context.Context, p domain.PartitionHandle, journalID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated journal listing.
	ListEntries(ctx context.Context, p domain.PartitionHandle, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListPostingsByAccount retrieves a token-paginated posting listing for
	// one account.
	ListPostingsByAccount(ctx context.Context, p domain.PartitionHandle, accountID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error)
}
