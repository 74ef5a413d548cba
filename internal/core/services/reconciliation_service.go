package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/platform/logging"
	"github.com/finledger/finledger_core/internal/utils/accounting"
)

// reconcileConcurrency bounds the parallel replay fan-out of a tenant pass.
const reconcileConcurrency = 4

// reconciliationService recomputes derived balances from the posting history
// and freezes accounts whose cached balance diverges. Detection only; the
// divergence itself is left for manual repair.
type reconciliationService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalReader
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalReader) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{accountRepo: accountRepo, journalRepo: journalRepo}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// ReconcileAccount verifies one account. On divergence the account is frozen
// and ErrCorruption is returned.
func (s *reconciliationService) ReconcileAccount(ctx context.Context, p domain.PartitionHandle, accountID string) error {
	logger := logging.FromContext(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, p, accountID)
	if err != nil {
		return err
	}

	postings, err := s.journalRepo.FindPostingsByAccountID(ctx, p, accountID, nil)
	if err != nil {
		return err
	}

	replayed, err := accounting.ReplayBalance(postings, account.NormalSide)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	if replayed.Equal(account.Balance) {
		return nil
	}

	logger.Error("reconciliation mismatch, freezing account",
		slog.String("account_id", accountID),
		slog.String("cached", account.Balance.String()),
		slog.String("replayed", replayed.String()))

	now := time.Now()
	audit := domain.AuditRecord{
		TenantID:   p.TenantID(),
		ActorID:    "system:reconciliation",
		Action:     domain.AuditAccountFrozen,
		EntityType: "account",
		EntityID:   accountID,
		Before:     balanceStateJSON(account.Balance.String(), false),
		After:      balanceStateJSON(replayed.String(), true),
	}
	if err := s.accountRepo.SetAccountFrozen(ctx, p, accountID, true, audit, "system:reconciliation", now); err != nil {
		return err
	}

	return fmt.Errorf("%w: account %s cached %s, replayed %s",
		apperrors.ErrCorruption, accountID, account.Balance.String(), replayed.String())
}

// ReconcileTenant verifies every account in the partition. Corrupted accounts
// are frozen and collected; other errors abort the pass.
func (s *reconciliationService) ReconcileTenant(ctx context.Context, p domain.PartitionHandle) (*portssvc.ReconciliationReport, error) {
	var (
		mu     sync.Mutex
		report portssvc.ReconciliationReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	var nextToken *string
	for {
		accounts, token, err := s.accountRepo.ListAccounts(ctx, p, 100, nextToken)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			accountID := account.AccountID
			g.Go(func() error {
				err := s.ReconcileAccount(gctx, p, accountID)
				mu.Lock()
				defer mu.Unlock()
				report.Checked++
				if errors.Is(err, apperrors.ErrCorruption) {
					report.Corrupted = append(report.Corrupted, accountID)
					return nil
				}
				return err
			})
		}

		if token == nil {
			break
		}
		nextToken = token
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}

func balanceStateJSON(balance string, frozen bool) []byte {
	b, _ := json.Marshal(map[string]any{"balance": balance, "isFrozen": frozen})
	return b
}
