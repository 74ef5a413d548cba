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
	ErrInvalidAccountType = errors.New("account type and normal side combination contradicts accounting convention")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAccountFrozen      = errors.New("account is frozen pending manual intervention")
)

// accountService owns ledger accounts within a resolved partition.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalReader
}

// NewAccountService creates a new AccountService. The journal reader is used
// for balance replay.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalReader) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, journalRepo: journalRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// OpenAccount creates a ledger account. The requested normal side must match
// the conventional side for the account type.
func (s *accountService) OpenAccount(ctx context.Context, p domain.PartitionHandle, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if p.ReadOnly() {
		return nil, fmt.Errorf("%w: tenant %s", ErrTenantSuspended, p.TenantID())
	}

	conventional, ok := domain.NormalSideFor(req.AccountType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if req.NormalSide != conventional {
		return nil, fmt.Errorf("%w: %s accounts are %s-normal", ErrInvalidAccountType, req.AccountType, conventional)
	}

	now := time.Now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    p.TenantID(),
		Name:        req.Name,
		AccountType: req.AccountType,
		NormalSide:  req.NormalSide,
		Description: req.Description,
		IsActive:    true,
		IsFrozen:    false,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit := domain.AuditRecord{
		TenantID:   p.TenantID(),
		ActorID:    actorID,
		Action:     domain.AuditAccountOpened,
		EntityType: "account",
		EntityID:   account.AccountID,
		After:      accountStateJSON(account),
	}

	if err := s.accountRepo.SaveAccount(ctx, p, account, audit); err != nil {
		logger.Error("failed to open account", slog.String("account_name", req.Name), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("account opened", slog.String("account_id", account.AccountID), slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByID retrieves one account from the partition.
func (s *accountService) GetAccountByID(ctx context.Context, p domain.PartitionHandle, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, p, accountID)
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, p, accountIDs)
}

// ListAccounts retrieves a token-paginated account listing.
func (s *accountService) ListAccounts(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string) ([]domain.Account, *string, error) {
	return s.accountRepo.ListAccounts(ctx, p, limit, nextToken)
}

// DeactivateAccount soft-disables an account. The row and its history remain.
func (s *accountService) DeactivateAccount(ctx context.Context, p domain.PartitionHandle, accountID string, actorID string) error {
	logger := logging.FromContext(ctx)

	if p.ReadOnly() {
		return fmt.Errorf("%w: tenant %s", ErrTenantSuspended, p.TenantID())
	}

	account, err := s.accountRepo.FindAccountByID(ctx, p, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}

	now := time.Now()
	after := *account
	after.IsActive = false
	audit := domain.AuditRecord{
		TenantID:   p.TenantID(),
		ActorID:    actorID,
		Action:     domain.AuditAccountDeactivated,
		EntityType: "account",
		EntityID:   accountID,
		Before:     accountStateJSON(*account),
		After:      accountStateJSON(after),
	}

	if err := s.accountRepo.SetAccountActive(ctx, p, accountID, false, audit, actorID, now); err != nil {
		return err
	}

	logger.Info("account deactivated", slog.String("account_id", accountID))
	return nil
}

// GetBalance computes the account balance by replaying the posting history up
// to asOf along the account's normal side. With no asOf the replay covers the
// full history and must equal the cached balance exactly; a mismatch means
// the ledger is corrupted, so the account is frozen and the divergence is
// reported, never papered over.
func (s *accountService) GetBalance(ctx context.Context, p domain.PartitionHandle, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	logger := logging.FromContext(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, p, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	postings, err := s.journalRepo.FindPostingsByAccountID(ctx, p, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := accounting.ReplayBalance(postings, account.NormalSide)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if asOf == nil && !balance.Equal(account.Balance) {
		logger.Error("cached balance diverged from posting replay, freezing account",
			slog.String("account_id", accountID),
			slog.String("cached", account.Balance.String()),
			slog.String("replayed", balance.String()))
		if !account.IsFrozen {
			audit := domain.AuditRecord{
				TenantID:   p.TenantID(),
				ActorID:    "system:reconciliation",
				Action:     domain.AuditAccountFrozen,
				EntityType: "account",
				EntityID:   accountID,
				Before:     balanceStateJSON(account.Balance.String(), false),
				After:      balanceStateJSON(balance.String(), true),
			}
			if err := s.accountRepo.SetAccountFrozen(ctx, p, accountID, true, audit, "system:reconciliation", time.Now()); err != nil {
				return decimal.Zero, err
			}
		}
		return decimal.Zero, fmt.Errorf("%w: account %s cached %s, replayed %s",
			apperrors.ErrCorruption, accountID, account.Balance.String(), balance.String())
	}

	return balance, nil
}

// accountStateJSON summarizes the auditable fields of an account.
func accountStateJSON(a domain.Account) []byte {
	state := map[string]any{
		"name":        a.Name,
		"accountType": a.AccountType,
		"normalSide":  a.NormalSide,
		"isActive":    a.IsActive,
		"isFrozen":    a.IsFrozen,
		"balance":     a.Balance.String(),
	}
	b, _ := json.Marshal(state)
	return b
}
