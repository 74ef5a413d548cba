package services_test

import (
	"context"
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TenantRepository ---

type MockTenantRepository struct {
	mock.Mock
}

var _ portsrepo.TenantRepositoryFacade = (*MockTenantRepository)(nil)

func (m *MockTenantRepository) SaveTenant(ctx context.Context, tenant domain.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindTenantByName(ctx context.Context, name string) (*domain.Tenant, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantRepository) UpdateTenantStatus(ctx context.Context, p domain.PartitionHandle, status domain.TenantStatus, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, p, status, audit, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, p domain.PartitionHandle, account domain.Account, audit domain.AuditRecord) error {
	args := m.Called(ctx, p, account, audit)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, p domain.PartitionHandle, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, p, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, p, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, p, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return args.Get(0).([]domain.Account), token, args.Error(2)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, p domain.PartitionHandle, accountID string, active bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, p, accountID, active, audit, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountFrozen(ctx context.Context, p domain.PartitionHandle, accountID string, frozen bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, p, accountID, frozen, audit, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveJournal(ctx context.Context, p domain.PartitionHandle, journal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	args := m.Called(ctx, p, journal, postings, balanceChanges, audit)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveReversal(ctx context.Context, p domain.PartitionHandle, reversal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, originalJournalID string, audit domain.AuditRecord) error {
	args := m.Called(ctx, p, reversal, postings, balanceChanges, originalJournalID, audit)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, p domain.PartitionHandle, journalID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, p, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByIdempotencyKey(ctx context.Context, p domain.PartitionHandle, key string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, p, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindPostingsByJournalID(ctx context.Context, p domain.PartitionHandle, journalID string) ([]domain.Posting, error) {
	args := m.Called(ctx, p, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

func (m *MockJournalRepository) FindPostingsByAccountID(ctx context.Context, p domain.PartitionHandle, accountID string, asOf *time.Time) ([]domain.Posting, error) {
	args := m.Called(ctx, p, accountID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, p, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), token, args.Error(2)
}

func (m *MockJournalRepository) ListPostingsByAccountID(ctx context.Context, p domain.PartitionHandle, accountID string, limit int, nextToken *string) ([]domain.Posting, *string, error) {
	args := m.Called(ctx, p, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return args.Get(0).([]domain.Posting), token, args.Error(2)
}

// --- Mock RBACRepository ---

type MockRBACRepository struct {
	mock.Mock
}

var _ portsrepo.RBACRepositoryFacade = (*MockRBACRepository)(nil)

func (m *MockRBACRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRBACRepository) FindRoleByName(ctx context.Context, name string, tenantID *string) (*domain.Role, error) {
	args := m.Called(ctx, name, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRBACRepository) LoadInclusionEdges(ctx context.Context) (map[string][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockRBACRepository) LoadPermissionSnapshot(ctx context.Context, principalID, tenantID string) (*domain.PermissionSnapshot, error) {
	args := m.Called(ctx, principalID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionSnapshot), args.Error(1)
}

func (m *MockRBACRepository) SaveRole(ctx context.Context, role domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRBACRepository) SaveRoleInclusion(ctx context.Context, inclusion domain.RoleInclusion) error {
	args := m.Called(ctx, inclusion)
	return args.Error(0)
}

func (m *MockRBACRepository) SaveRoleAssignment(ctx context.Context, assignment domain.RoleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockRBACRepository) SaveGrant(ctx context.Context, grant domain.PermissionGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockRBACRepository) DeleteGrant(ctx context.Context, grantID string) error {
	args := m.Called(ctx, grantID)
	return args.Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditReader = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) QueryAuditRecords(ctx context.Context, p domain.PartitionHandle, filter portsrepo.AuditQueryFilter, limit int, nextToken *string) ([]domain.AuditRecord, *string, error) {
	args := m.Called(ctx, p, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return args.Get(0).([]domain.AuditRecord), token, args.Error(2)
}

func (m *MockAuditRepository) LatestSequence(ctx context.Context, p domain.PartitionHandle) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock TenantService ---

type MockTenantService struct {
	mock.Mock
}

var _ portssvc.TenantSvcFacade = (*MockTenantService)(nil)

func (m *MockTenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorID string) (*domain.Tenant, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantService) GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantService) ResolvePartition(ctx context.Context, tenantID string) (domain.PartitionHandle, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(domain.PartitionHandle), args.Error(1)
}

func (m *MockTenantService) SuspendTenant(ctx context.Context, tenantID string, actorID string) error {
	args := m.Called(ctx, tenantID, actorID)
	return args.Error(0)
}

func (m *MockTenantService) ReactivateTenant(ctx context.Context, tenantID string, actorID string) error {
	args := m.Called(ctx, tenantID, actorID)
	return args.Error(0)
}

// --- Mock AuthorizationService ---

type MockAuthorizationService struct {
	mock.Mock
}

var _ portssvc.AuthorizationSvcFacade = (*MockAuthorizationService)(nil)

func (m *MockAuthorizationService) Authorize(ctx context.Context, principalID, tenantID string, permission domain.Permission, object *domain.ObjectRef) error {
	args := m.Called(ctx, principalID, tenantID, permission, object)
	return args.Error(0)
}

func (m *MockAuthorizationService) CreateRole(ctx context.Context, req dto.CreateRoleRequest, actorID string) (*domain.Role, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockAuthorizationService) GetRoleByName(ctx context.Context, name string, tenantID *string) (*domain.Role, error) {
	args := m.Called(ctx, name, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockAuthorizationService) AddRoleInclusion(ctx context.Context, req dto.AddRoleInclusionRequest, actorID string) error {
	args := m.Called(ctx, req, actorID)
	return args.Error(0)
}

func (m *MockAuthorizationService) AssignRole(ctx context.Context, req dto.AssignRoleRequest, actorID string) error {
	args := m.Called(ctx, req, actorID)
	return args.Error(0)
}

func (m *MockAuthorizationService) Grant(ctx context.Context, req dto.GrantRequest, actorID string) (*domain.PermissionGrant, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PermissionGrant), args.Error(1)
}

func (m *MockAuthorizationService) Revoke(ctx context.Context, grantID string, actorID string) error {
	args := m.Called(ctx, grantID, actorID)
	return args.Error(0)
}

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) OpenAccount(ctx context.Context, p domain.PartitionHandle, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, p, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, p domain.PartitionHandle, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, p, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, p, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, p, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return args.Get(0).([]domain.Account), token, args.Error(2)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, p domain.PartitionHandle, accountID string, actorID string) error {
	args := m.Called(ctx, p, accountID, actorID)
	return args.Error(0)
}

func (m *MockAccountService) GetBalance(ctx context.Context, p domain.PartitionHandle, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, p, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock JournalService ---

type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) PostEntry(ctx context.Context, p domain.PartitionHandle, req dto.PostEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, p, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ReverseEntry(ctx context.Context, p domain.PartitionHandle, journalID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, p, journalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntryByID(ctx context.Context, p domain.PartitionHandle, journalID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, p, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ListEntries(ctx context.Context, p domain.PartitionHandle, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, p, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockJournalService) ListPostingsByAccount(ctx context.Context, p domain.PartitionHandle, accountID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error) {
	args := m.Called(ctx, p, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPostingsResponse), args.Error(1)
}

// --- Mock AuditService ---

type MockAuditService struct {
	mock.Mock
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)

func (m *MockAuditService) QueryAudit(ctx context.Context, p domain.PartitionHandle, params dto.AuditQueryParams) (*dto.ListAuditResponse, error) {
	args := m.Called(ctx, p, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAuditResponse), args.Error(1)
}

// --- Mock ReconciliationService ---

type MockReconciliationService struct {
	mock.Mock
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

func (m *MockReconciliationService) ReconcileAccount(ctx context.Context, p domain.PartitionHandle, accountID string) error {
	args := m.Called(ctx, p, accountID)
	return args.Error(0)
}

func (m *MockReconciliationService) ReconcileTenant(ctx context.Context, p domain.PartitionHandle) (*portssvc.ReconciliationReport, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ReconciliationReport), args.Error(1)
}
