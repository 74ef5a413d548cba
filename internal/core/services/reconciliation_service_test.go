package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockJournalRepo *MockJournalRepository
	service         portssvc.ReconciliationSvcFacade
	partition       domain.PartitionHandle
	tenantID        string
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.service = services.NewReconciliationService(suite.mockAccountRepo, suite.mockJournalRepo)

	suite.tenantID = uuid.NewString()
	suite.partition = domain.NewPartitionHandle(suite.tenantID, "acme", false)
}

func (suite *ReconciliationServiceTestSuite) TestReconcileAccount_Clean() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{
		AccountID:  accountID,
		TenantID:   suite.tenantID,
		NormalSide: domain.DebitNormal,
		Balance:    decimal.NewFromInt(60),
	}
	postings := []domain.Posting{
		{PostingID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(100), Side: domain.Debit},
		{PostingID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(40), Side: domain.Credit},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.partition, accountID).Return(account, nil).Once()
	suite.mockJournalRepo.On("FindPostingsByAccountID", ctx, suite.partition, accountID, (*time.Time)(nil)).
		Return(postings, nil).Once()

	err := suite.service.ReconcileAccount(ctx, suite.partition, accountID)

	suite.NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountFrozen",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestReconcileAccount_DivergenceFreezes() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{
		AccountID:  accountID,
		TenantID:   suite.tenantID,
		NormalSide: domain.DebitNormal,
		Balance:    decimal.NewFromInt(500),
	}
	postings := []domain.Posting{
		{PostingID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(100), Side: domain.Debit},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.partition, accountID).Return(account, nil).Once()
	suite.mockJournalRepo.On("FindPostingsByAccountID", ctx, suite.partition, accountID, (*time.Time)(nil)).
		Return(postings, nil).Once()
	suite.mockAccountRepo.On("SetAccountFrozen", ctx, suite.partition, accountID, true,
		mock.MatchedBy(func(audit domain.AuditRecord) bool {
			return audit.Action == domain.AuditAccountFrozen && audit.EntityID == accountID
		}),
		"system:reconciliation", mock.AnythingOfType("time.Time"),
	).Return(nil).Once()

	err := suite.service.ReconcileAccount(ctx, suite.partition, accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCorruption)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcileTenant_CollectsCorrupted() {
	ctx := context.Background()

	clean := domain.Account{
		AccountID:  uuid.NewString(),
		TenantID:   suite.tenantID,
		NormalSide: domain.DebitNormal,
		Balance:    decimal.NewFromInt(100),
	}
	corrupt := domain.Account{
		AccountID:  uuid.NewString(),
		TenantID:   suite.tenantID,
		NormalSide: domain.DebitNormal,
		Balance:    decimal.NewFromInt(999),
	}
	posting := func(accountID string) []domain.Posting {
		return []domain.Posting{
			{PostingID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(100), Side: domain.Debit},
		}
	}

	suite.mockAccountRepo.On("ListAccounts", ctx, suite.partition, 100, (*string)(nil)).
		Return([]domain.Account{clean, corrupt}, nil, nil).Once()

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.partition, clean.AccountID).Return(&clean, nil).Once()
	suite.mockJournalRepo.On("FindPostingsByAccountID", mock.Anything, suite.partition, clean.AccountID, (*time.Time)(nil)).
		Return(posting(clean.AccountID), nil).Once()

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.partition, corrupt.AccountID).Return(&corrupt, nil).Once()
	suite.mockJournalRepo.On("FindPostingsByAccountID", mock.Anything, suite.partition, corrupt.AccountID, (*time.Time)(nil)).
		Return(posting(corrupt.AccountID), nil).Once()
	suite.mockAccountRepo.On("SetAccountFrozen", mock.Anything, suite.partition, corrupt.AccountID, true,
		mock.Anything, "system:reconciliation", mock.AnythingOfType("time.Time"),
	).Return(nil).Once()

	report, err := suite.service.ReconcileTenant(ctx, suite.partition)

	suite.Require().NoError(err)
	suite.Equal(2, report.Checked)
	suite.Equal([]string{corrupt.AccountID}, report.Corrupted)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
