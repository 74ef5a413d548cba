package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/finledger/finledger_core/internal/platform/logging"
	"github.com/finledger/finledger_core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrUnbalanced      = errors.New("journal postings do not balance, debits must equal credits")
	ErrMinPostings     = errors.New("journal must have at least two postings")
	ErrMinAccounts     = errors.New("journal must affect at least two different accounts")
	ErrNegativeAmount  = errors.New("posting amount must be positive")
	ErrUnknownAccount  = errors.New("posting references an unknown account")
	ErrAlreadyReversed = errors.New("journal entry is already reversed")
	ErrReversalOfRev   = errors.New("reversal entries cannot themselves be reversed")
)

// journalService is the posting side of the ledger engine.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo, accountSvc: accountSvc}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validatePostings checks the double-entry invariants of a posting request set.
func validatePostings(postings []dto.PostingRequest) error {
	if len(postings) < 2 {
		return ErrMinPostings
	}

	accountSet := make(map[string]bool)
	debits := decimal.Zero
	credits := decimal.Zero
	for _, p := range postings {
		if p.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: account %s got %s", ErrNegativeAmount, p.AccountID, p.Amount.String())
		}
		accountSet[p.AccountID] = true
		if p.Side == domain.Debit {
			debits = debits.Add(p.Amount)
		} else {
			credits = credits.Add(p.Amount)
		}
	}
	if len(accountSet) < 2 {
		return ErrMinAccounts
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum to %s, credits to %s", ErrUnbalanced, debits.String(), credits.String())
	}
	return nil
}

// checkAccounts verifies every referenced account exists, is active, and is
// not frozen, returning the accounts keyed by ID.
func (s *journalService) checkAccounts(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, p, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrAccountInactive, id)
		}
		if account.IsFrozen {
			return nil, fmt.Errorf("%w: %s", ErrAccountFrozen, id)
		}
	}
	return accounts, nil
}

// balanceDeltas folds postings into per-account balance changes signed along
// each account's normal side.
func balanceDeltas(postings []domain.Posting, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, posting := range postings {
		account := accounts[posting.AccountID]
		signed, err := accounting.SignedAmount(posting, account.NormalSide)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		deltas[posting.AccountID] = deltas[posting.AccountID].Add(signed)
	}
	return deltas, nil
}

// PostEntry validates and atomically persists a balanced journal entry. A
// retried request with the same idempotency key returns the entry committed
// by the first attempt instead of double-posting.
func (s *journalService) PostEntry(ctx context.Context, p domain.PartitionHandle, req dto.PostEntryRequest, actorID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if p.ReadOnly() {
		return nil, fmt.Errorf("%w: tenant %s", ErrTenantSuspended, p.TenantID())
	}
	if err := validatePostings(req.Postings); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	accountIDs := make([]string, 0, len(req.Postings))
	seen := make(map[string]bool)
	for _, posting := range req.Postings {
		if !seen[posting.AccountID] {
			seen[posting.AccountID] = true
			accountIDs = append(accountIDs, posting.AccountID)
		}
	}
	accounts, err := s.checkAccounts(ctx, p, accountIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	journalDate := now
	if req.Date != nil {
		journalDate = *req.Date
	}

	journal := domain.JournalEntry{
		JournalID:      uuid.NewString(),
		TenantID:       p.TenantID(),
		JournalDate:    journalDate,
		Memo:           req.Memo,
		Status:         domain.Posted,
		IdempotencyKey: req.IdempotencyKey,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	postings := make([]domain.Posting, len(req.Postings))
	for i, pr := range req.Postings {
		postings[i] = domain.Posting{
			PostingID:   uuid.NewString(),
			JournalID:   journal.JournalID,
			AccountID:   pr.AccountID,
			Amount:      pr.Amount,
			Side:        pr.Side,
			AuditFields: journal.AuditFields,
		}
	}
	journal.Postings = postings

	deltas, err := balanceDeltas(postings, accounts)
	if err != nil {
		return nil, err
	}

	audit := domain.AuditRecord{
		TenantID:   p.TenantID(),
		ActorID:    actorID,
		Action:     domain.AuditEntryPosted,
		EntityType: "journal",
		EntityID:   journal.JournalID,
		After:      journalStateJSON(journal),
	}

	if err := s.journalRepo.SaveJournal(ctx, p, journal, postings, deltas, audit); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.replayIdempotent(ctx, p, req.IdempotencyKey)
		}
		logger.Error("failed to post entry", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("entry posted",
		slog.String("journal_id", journal.JournalID),
		slog.Int("postings", len(postings)))
	return &journal, nil
}

// replayIdempotent returns the entry already committed under the idempotency
// key. A duplicate key with no retrievable entry is a genuine conflict.
func (s *journalService) replayIdempotent(ctx context.Context, p domain.PartitionHandle, key string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	existing, err := s.journalRepo.FindJournalByIdempotencyKey(ctx, p, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: idempotency key %s already used", apperrors.ErrDuplicate, key)
		}
		return nil, err
	}
	postings, err := s.journalRepo.FindPostingsByJournalID(ctx, p, existing.JournalID)
	if err != nil {
		return nil, err
	}
	existing.Postings = postings

	logger.Info("idempotent replay", slog.String("journal_id", existing.JournalID))
	return existing, nil
}

// ReverseEntry creates a compensating entry mirroring the original's postings
// with flipped sides and marks the original REVERSED. The original postings
// are never edited; reversing a reversal is rejected so corrections stay a
// simple chain.
func (s *journalService) ReverseEntry(ctx context.Context, p domain.PartitionHandle, journalID string, actorID string) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if p.ReadOnly() {
		return nil, fmt.Errorf("%w: tenant %s", ErrTenantSuspended, p.TenantID())
	}

	original, err := s.journalRepo.FindJournalByID(ctx, p, journalID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, journalID)
	}
	if original.OriginalJournalID != nil {
		return nil, fmt.Errorf("%w: %s", ErrReversalOfRev, journalID)
	}

	originalPostings, err := s.journalRepo.FindPostingsByJournalID(ctx, p, journalID)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(originalPostings))
	seen := make(map[string]bool)
	for _, posting := range originalPostings {
		if !seen[posting.AccountID] {
			seen[posting.AccountID] = true
			accountIDs = append(accountIDs, posting.AccountID)
		}
	}
	accounts, err := s.checkAccounts(ctx, p, accountIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reversal := domain.JournalEntry{
		JournalID:         uuid.NewString(),
		TenantID:          p.TenantID(),
		JournalDate:       now,
		Memo:              "Reversal of: " + original.Memo,
		Status:            domain.Posted,
		OriginalJournalID: &original.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	postings := make([]domain.Posting, len(originalPostings))
	for i, op := range originalPostings {
		postings[i] = domain.Posting{
			PostingID:   uuid.NewString(),
			JournalID:   reversal.JournalID,
			AccountID:   op.AccountID,
			Amount:      op.Amount,
			Side:        op.Side.Opposite(),
			AuditFields: reversal.AuditFields,
		}
	}
	reversal.Postings = postings

	deltas, err := balanceDeltas(postings, accounts)
	if err != nil {
		return nil, err
	}

	audit := domain.AuditRecord{
		TenantID:   p.TenantID(),
		ActorID:    actorID,
		Action:     domain.AuditEntryReversed,
		EntityType: "journal",
		EntityID:   original.JournalID,
		Before:     journalStateJSON(*original),
		After:      journalStateJSON(reversal),
	}

	if err := s.journalRepo.SaveReversal(ctx, p, reversal, postings, deltas, original.JournalID, audit); err != nil {
		logger.Error("failed to reverse entry", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("entry reversed",
		slog.String("original_journal_id", original.JournalID),
		slog.String("reversal_journal_id", reversal.JournalID))
	return &reversal, nil
}

// GetEntryByID retrieves a journal entry with its postings.
func (s *journalService) GetEntryByID(ctx context.Context, p domain.PartitionHandle, journalID string) (*domain.JournalEntry, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, p, journalID)
	if err != nil {
		return nil, err
	}
	postings, err := s.journalRepo.FindPostingsByJournalID(ctx, p, journalID)
	if err != nil {
		return nil, err
	}
	journal.Postings = postings
	return journal, nil
}

// ListEntries retrieves a token-paginated journal listing.
func (s *journalService) ListEntries(ctx context.Context, p domain.PartitionHandle, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	journals, nextToken, err := s.journalRepo.ListJournals(ctx, p, params.Limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		entries[i] = dto.ToJournalResponse(&journals[i])
	}
	return &dto.ListEntriesResponse{Entries: entries, NextToken: nextToken}, nil
}

// ListPostingsByAccount retrieves a token-paginated posting listing for one account.
func (s *journalService) ListPostingsByAccount(ctx context.Context, p domain.PartitionHandle, accountID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error) {
	postings, nextToken, err := s.journalRepo.ListPostingsByAccountID(ctx, p, accountID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListPostingsResponse{Postings: dto.ToPostingResponses(postings), NextToken: nextToken}, nil
}

// journalStateJSON summarizes the auditable fields of a journal entry.
func journalStateJSON(j domain.JournalEntry) []byte {
	state := map[string]any{
		"memo":     j.Memo,
		"status":   j.Status,
		"postings": len(j.Postings),
	}
	if j.OriginalJournalID != nil {
		state["originalJournalID"] = *j.OriginalJournalID
	}
	b, _ := json.Marshal(state)
	return b
}
