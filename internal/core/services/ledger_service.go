package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/finledger/finledger_core/internal/platform/logging"
)

// Lifecycle states of one orchestrated request, logged at each transition.
const (
	stateReceived   = "RECEIVED"
	stateAuthorized = "AUTHORIZED"
	stateDenied     = "DENIED"
	stateCommitted  = "COMMITTED"
	stateFailed     = "FAILED"
)

// ledgerService is the orchestration surface. Every operation runs the same
// sequence: authorize the principal, resolve the partition handle only after
// the allow, execute against the handle, and log the outcome. A denied
// request never touches tenant data, not even to learn whether the target
// exists.
type ledgerService struct {
	baseLogger *slog.Logger
	tenantSvc  portssvc.TenantSvcFacade
	authSvc    portssvc.AuthorizationSvcFacade
	accountSvc portssvc.AccountSvcFacade
	journalSvc portssvc.JournalSvcFacade
	auditSvc   portssvc.AuditSvcFacade
	reconSvc   portssvc.ReconciliationSvcFacade
}

// NewLedgerService creates the orchestrator over the domain services.
func NewLedgerService(
	baseLogger *slog.Logger,
	tenantSvc portssvc.TenantSvcFacade,
	authSvc portssvc.AuthorizationSvcFacade,
	accountSvc portssvc.AccountSvcFacade,
	journalSvc portssvc.JournalSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
	reconSvc portssvc.ReconciliationSvcFacade,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		baseLogger: baseLogger,
		tenantSvc:  tenantSvc,
		authSvc:    authSvc,
		accountSvc: accountSvc,
		journalSvc: journalSvc,
		auditSvc:   auditSvc,
		reconSvc:   reconSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// begin stamps the request context with a correlated logger and authorizes
// the principal. It returns the partition handle only on allow.
func (s *ledgerService) begin(ctx context.Context, operation, principalID, tenantID string, permission domain.Permission, object *domain.ObjectRef) (context.Context, domain.PartitionHandle, error) {
	ctx = logging.WithRequestLogger(ctx, s.baseLogger, operation, tenantID, principalID)
	logger := logging.FromContext(ctx)
	logger.Info("request received", slog.String("state", stateReceived))

	if err := s.authSvc.Authorize(ctx, principalID, tenantID, permission, object); err != nil {
		logger.Warn("request denied", slog.String("state", stateDenied))
		return ctx, domain.PartitionHandle{}, err
	}
	logger.Info("request authorized", slog.String("state", stateAuthorized))

	p, err := s.tenantSvc.ResolvePartition(ctx, tenantID)
	if err != nil {
		logger.Warn("partition resolution failed", slog.String("state", stateFailed), slog.String("error", err.Error()))
		return ctx, domain.PartitionHandle{}, err
	}
	return ctx, p, nil
}

// finish logs the terminal state of the request.
func (s *ledgerService) finish(ctx context.Context, err error) {
	logger := logging.FromContext(ctx)
	if err != nil {
		logger.Warn("request failed", slog.String("state", stateFailed), slog.String("error", err.Error()))
		return
	}
	logger.Info("request committed", slog.String("state", stateCommitted))
}

func (s *ledgerService) OpenAccount(ctx context.Context, principalID, tenantID string, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	ctx, p, err := s.begin(ctx, "openAccount", principalID, tenantID, domain.PermAccountManage, nil)
	if err != nil {
		return nil, err
	}

	account, err := s.accountSvc.OpenAccount(ctx, p, req, principalID)
	s.finish(ctx, err)
	if err != nil {
		return nil, err
	}
	resp := dto.ToAccountResponse(account)
	return &resp, nil
}

func (s *ledgerService) DeactivateAccount(ctx context.Context, principalID, tenantID, accountID string) error {
	object := &domain.ObjectRef{Type: "account", ID: accountID}
	ctx, p, err := s.begin(ctx, "deactivateAccount", principalID, tenantID, domain.PermAccountManage, object)
	if err != nil {
		return err
	}

	err = s.accountSvc.DeactivateAccount(ctx, p, accountID, principalID)
	s.finish(ctx, err)
	return err
}

func (s *ledgerService) GetBalance(ctx context.Context, principalID, tenantID, accountID string, asOf *time.Time) (*dto.BalanceResponse, error) {
	object := &domain.ObjectRef{Type: "account", ID: accountID}
	ctx, p, err := s.begin(ctx, "getBalance", principalID, tenantID, domain.PermLedgerRead, object)
	if err != nil {
		return nil, err
	}

	balance, err := s.accountSvc.GetBalance(ctx, p, accountID, asOf)
	s.finish(ctx, err)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{AccountID: accountID, Balance: balance, AsOf: asOf}, nil
}

func (s *ledgerService) ListAccounts(ctx context.Context, principalID, tenantID string, limit int, nextToken *string) ([]dto.AccountResponse, *string, error) {
	ctx, p, err := s.begin(ctx, "listAccounts", principalID, tenantID, domain.PermLedgerRead, nil)
	if err != nil {
		return nil, nil, err
	}

	accounts, token, err := s.accountSvc.ListAccounts(ctx, p, limit, nextToken)
	s.finish(ctx, err)
	if err != nil {
		return nil, nil, err
	}

	out := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = dto.ToAccountResponse(&accounts[i])
	}
	return out, token, nil
}

func (s *ledgerService) PostEntry(ctx context.Context, principalID, tenantID string, req dto.PostEntryRequest) (*dto.JournalResponse, error) {
	ctx, p, err := s.begin(ctx, "postEntry", principalID, tenantID, domain.PermLedgerPost, nil)
	if err != nil {
		return nil, err
	}

	journal, err := s.journalSvc.PostEntry(ctx, p, req, principalID)
	s.finish(ctx, err)
	if err != nil {
		return nil, err
	}
	resp := dto.ToJournalResponse(journal)
	return &resp, nil
}

func (s *ledgerService) ReverseEntry(ctx context.Context, principalID, tenantID, journalID string) (*dto.JournalResponse, error) {
	ctx, p, err := s.begin(ctx, "reverseEntry", principalID, tenantID, domain.PermLedgerReverse, nil)
	if err != nil {
		return nil, err
	}

	reversal, err := s.journalSvc.ReverseEntry(ctx, p, journalID, principalID)
	s.finish(ctx, err)
	if err != nil {
		return nil, err
	}
	resp := dto.ToJournalResponse(reversal)
	return &resp, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, principalID, tenantID, journalID string) (*dto.JournalResponse, error) {
	ctx, p, err := s.begin(ctx, "getEntry", principalID, tenantID, domain.PermLedgerRead, nil)
	if err != nil {
		return nil, err
	}

	journal, err := s.journalSvc.GetEntryByID(ctx, p, journalID)
	s.finish(ctx, err)
	if err != nil {
		return nil, err
	}
	resp := dto.ToJournalResponse(journal)
	return &resp, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, principalID, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	ctx, p, err := s.begin(ctx, "listEntries", principalID, tenantID, domain.PermLedgerRead, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.journalSvc.ListEntries(ctx, p, params)
	s.finish(ctx, err)
	return resp, err
}

func (s *ledgerService) QueryAudit(ctx context.Context, principalID, tenantID string, params dto.AuditQueryParams) (*dto.ListAuditResponse, error) {
	ctx, p, err := s.begin(ctx, "queryAudit", principalID, tenantID, domain.PermAuditRead, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.auditSvc.QueryAudit(ctx, p, params)
	s.finish(ctx, err)
	return resp, err
}

func (s *ledgerService) ReconcileAccount(ctx context.Context, principalID, tenantID, accountID string) error {
	object := &domain.ObjectRef{Type: "account", ID: accountID}
	ctx, p, err := s.begin(ctx, "reconcileAccount", principalID, tenantID, domain.PermAccountManage, object)
	if err != nil {
		return err
	}

	err = s.reconSvc.ReconcileAccount(ctx, p, accountID)
	s.finish(ctx, err)
	return err
}
