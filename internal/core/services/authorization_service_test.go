package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/core/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthorizationServiceTestSuite struct {
	suite.Suite
	mockRBACRepo    *MockRBACRepository
	mockTenantSvc   *MockTenantService
	mockAccountRepo *MockAccountRepository
	service         portssvc.AuthorizationSvcFacade
	tenantID        string
	principalID     string
	actorID         string
}

func (suite *AuthorizationServiceTestSuite) SetupTest() {
	suite.mockRBACRepo = new(MockRBACRepository)
	suite.mockTenantSvc = new(MockTenantService)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAuthorizationService(suite.mockRBACRepo, suite.mockTenantSvc, suite.mockAccountRepo)

	suite.tenantID = uuid.NewString()
	suite.principalID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *AuthorizationServiceTestSuite) snapshotWith(roleID string, grants ...domain.PermissionGrant) *domain.PermissionSnapshot {
	return &domain.PermissionSnapshot{
		Assignments: []domain.RoleAssignment{
			{PrincipalID: suite.principalID, RoleID: roleID, TenantID: &suite.tenantID},
		},
		Inclusions: map[string][]string{},
		RoleGrants: map[string][]domain.PermissionGrant{roleID: grants},
	}
}

func (suite *AuthorizationServiceTestSuite) tenantGrant(roleID string, perm domain.Permission, effect domain.GrantEffect) domain.PermissionGrant {
	return domain.PermissionGrant{
		GrantID:     uuid.NewString(),
		SubjectKind: domain.SubjectRole,
		SubjectID:   roleID,
		Permission:  perm,
		Scope:       domain.ScopeTenant,
		Effect:      effect,
		TenantID:    &suite.tenantID,
	}
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_AllowViaRoleGrant() {
	ctx := context.Background()
	roleID := uuid.NewString()
	snapshot := suite.snapshotWith(roleID, suite.tenantGrant(roleID, domain.PermLedgerPost, domain.EffectAllow))

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerPost, nil)

	suite.NoError(err)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_DenyWithNoCoveringGrant() {
	ctx := context.Background()
	roleID := uuid.NewString()
	// The role only grants read; a post must fail closed.
	snapshot := suite.snapshotWith(roleID, suite.tenantGrant(roleID, domain.PermLedgerRead, domain.EffectAllow))

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerPost, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_AllowViaIncludedRole() {
	ctx := context.Background()
	adminRole := uuid.NewString()
	viewerRole := uuid.NewString()

	snapshot := &domain.PermissionSnapshot{
		Assignments: []domain.RoleAssignment{
			{PrincipalID: suite.principalID, RoleID: adminRole, TenantID: &suite.tenantID},
		},
		Inclusions: map[string][]string{adminRole: {viewerRole}},
		RoleGrants: map[string][]domain.PermissionGrant{
			viewerRole: {suite.tenantGrant(viewerRole, domain.PermLedgerRead, domain.EffectAllow)},
		},
	}

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerRead, nil)

	suite.NoError(err)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_MoreSpecificDenyWins() {
	ctx := context.Background()
	roleID := uuid.NewString()

	globalAllow := domain.PermissionGrant{
		GrantID:     uuid.NewString(),
		SubjectKind: domain.SubjectRole,
		SubjectID:   roleID,
		Permission:  domain.PermLedgerPost,
		Scope:       domain.ScopeGlobal,
		Effect:      domain.EffectAllow,
	}
	tenantDeny := suite.tenantGrant(roleID, domain.PermLedgerPost, domain.EffectDeny)
	snapshot := suite.snapshotWith(roleID, globalAllow, tenantDeny)

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerPost, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_ObjectAllowBeatsTenantDeny() {
	ctx := context.Background()
	roleID := uuid.NewString()
	object := &domain.ObjectRef{Type: "account", ID: uuid.NewString()}

	objectAllow := domain.PermissionGrant{
		GrantID:     uuid.NewString(),
		SubjectKind: domain.SubjectRole,
		SubjectID:   roleID,
		Permission:  domain.PermLedgerRead,
		Scope:       domain.ScopeObject,
		Effect:      domain.EffectAllow,
		TenantID:    &suite.tenantID,
		Object:      object,
	}
	tenantDeny := suite.tenantGrant(roleID, domain.PermLedgerRead, domain.EffectDeny)
	snapshot := suite.snapshotWith(roleID, objectAllow, tenantDeny)

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerRead, object)

	suite.NoError(err)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_DenyTieAtSameSpecificity() {
	ctx := context.Background()
	roleID := uuid.NewString()
	snapshot := suite.snapshotWith(roleID,
		suite.tenantGrant(roleID, domain.PermLedgerPost, domain.EffectAllow),
		suite.tenantGrant(roleID, domain.PermLedgerPost, domain.EffectDeny),
	)

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerPost, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_PrincipalGrantApplies() {
	ctx := context.Background()
	snapshot := &domain.PermissionSnapshot{
		Inclusions: map[string][]string{},
		RoleGrants: map[string][]domain.PermissionGrant{},
		PrincipalGrants: []domain.PermissionGrant{
			{
				GrantID:     uuid.NewString(),
				SubjectKind: domain.SubjectPrincipal,
				SubjectID:   suite.principalID,
				Permission:  domain.PermAuditRead,
				Scope:       domain.ScopeTenant,
				Effect:      domain.EffectAllow,
				TenantID:    &suite.tenantID,
			},
		},
	}

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermAuditRead, nil)

	suite.NoError(err)
}

func (suite *AuthorizationServiceTestSuite) TestAuthorize_SurvivesCyclicGraph() {
	ctx := context.Background()
	roleA := uuid.NewString()
	roleB := uuid.NewString()

	// A corrupted graph with a cycle must still terminate and resolve.
	snapshot := &domain.PermissionSnapshot{
		Assignments: []domain.RoleAssignment{
			{PrincipalID: suite.principalID, RoleID: roleA, TenantID: &suite.tenantID},
		},
		Inclusions: map[string][]string{roleA: {roleB}, roleB: {roleA}},
		RoleGrants: map[string][]domain.PermissionGrant{
			roleB: {suite.tenantGrant(roleB, domain.PermLedgerRead, domain.EffectAllow)},
		},
	}

	suite.mockRBACRepo.On("LoadPermissionSnapshot", ctx, suite.principalID, suite.tenantID).
		Return(snapshot, nil).Once()

	err := suite.service.Authorize(ctx, suite.principalID, suite.tenantID, domain.PermLedgerRead, nil)

	suite.NoError(err)
}

func (suite *AuthorizationServiceTestSuite) TestAddRoleInclusion_RejectsCycle() {
	ctx := context.Background()
	roleA := uuid.NewString()
	roleB := uuid.NewString()
	roleC := uuid.NewString()

	suite.mockRBACRepo.On("FindRoleByID", ctx, roleC).Return(&domain.Role{RoleID: roleC, IsActive: true}, nil).Once()
	suite.mockRBACRepo.On("FindRoleByID", ctx, roleA).Return(&domain.Role{RoleID: roleA, IsActive: true}, nil).Once()
	// A includes B includes C; adding C includes A closes the loop.
	suite.mockRBACRepo.On("LoadInclusionEdges", ctx).
		Return(map[string][]string{roleA: {roleB}, roleB: {roleC}}, nil).Once()

	err := suite.service.AddRoleInclusion(ctx, dto.AddRoleInclusionRequest{
		ParentRoleID:   roleC,
		IncludedRoleID: roleA,
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRoleCycle)
	suite.mockRBACRepo.AssertNotCalled(suite.T(), "SaveRoleInclusion", mock.Anything, mock.Anything)
}

func (suite *AuthorizationServiceTestSuite) TestAddRoleInclusion_Success() {
	ctx := context.Background()
	parent := uuid.NewString()
	included := uuid.NewString()

	suite.mockRBACRepo.On("FindRoleByID", ctx, parent).Return(&domain.Role{RoleID: parent, IsActive: true}, nil).Once()
	suite.mockRBACRepo.On("FindRoleByID", ctx, included).Return(&domain.Role{RoleID: included, IsActive: true}, nil).Once()
	suite.mockRBACRepo.On("LoadInclusionEdges", ctx).Return(map[string][]string{}, nil).Once()
	suite.mockRBACRepo.On("SaveRoleInclusion", ctx, mock.MatchedBy(func(inc domain.RoleInclusion) bool {
		return inc.ParentRoleID == parent && inc.IncludedRoleID == included
	})).Return(nil).Once()

	err := suite.service.AddRoleInclusion(ctx, dto.AddRoleInclusionRequest{
		ParentRoleID:   parent,
		IncludedRoleID: included,
	}, suite.actorID)

	suite.NoError(err)
	suite.mockRBACRepo.AssertExpectations(suite.T())
}

func (suite *AuthorizationServiceTestSuite) TestGrant_ScopeMismatch() {
	ctx := context.Background()

	_, err := suite.service.Grant(ctx, dto.GrantRequest{
		SubjectKind: domain.SubjectPrincipal,
		SubjectID:   suite.principalID,
		Permission:  domain.PermLedgerRead,
		Scope:       domain.ScopeTenant,
		Effect:      domain.EffectAllow,
		// TenantID missing for a tenant-scoped grant.
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrScopeMismatch)
}

func (suite *AuthorizationServiceTestSuite) TestGrant_ObjectMustExist() {
	ctx := context.Background()
	accountID := uuid.NewString()
	partition := domain.NewPartitionHandle(suite.tenantID, "acme", false)

	suite.mockTenantSvc.On("GetTenantByID", ctx, suite.tenantID).
		Return(&domain.Tenant{TenantID: suite.tenantID, Status: domain.TenantActive}, nil).Once()
	suite.mockTenantSvc.On("ResolvePartition", ctx, suite.tenantID).
		Return(partition, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, partition, accountID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Grant(ctx, dto.GrantRequest{
		SubjectKind: domain.SubjectPrincipal,
		SubjectID:   suite.principalID,
		Permission:  domain.PermLedgerRead,
		Scope:       domain.ScopeObject,
		Effect:      domain.EffectAllow,
		TenantID:    &suite.tenantID,
		Object:      &domain.ObjectRef{Type: "account", ID: accountID},
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnknownObject)
	suite.mockRBACRepo.AssertNotCalled(suite.T(), "SaveGrant", mock.Anything, mock.Anything)
}

func (suite *AuthorizationServiceTestSuite) TestAssignRole_TenantMismatch() {
	ctx := context.Background()
	otherTenant := uuid.NewString()
	roleID := uuid.NewString()

	suite.mockRBACRepo.On("FindRoleByID", ctx, roleID).
		Return(&domain.Role{RoleID: roleID, TenantID: &otherTenant, IsActive: true}, nil).Once()

	err := suite.service.AssignRole(ctx, dto.AssignRoleRequest{
		PrincipalID: suite.principalID,
		RoleID:      roleID,
		TenantID:    &suite.tenantID,
	}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTenantMismatch)
}

func (suite *AuthorizationServiceTestSuite) TestCreateRole_Success() {
	ctx := context.Background()

	suite.mockTenantSvc.On("GetTenantByID", ctx, suite.tenantID).
		Return(&domain.Tenant{TenantID: suite.tenantID, Status: domain.TenantActive}, nil).Once()
	suite.mockRBACRepo.On("SaveRole", ctx, mock.MatchedBy(func(role domain.Role) bool {
		return role.Name == "bookkeeper" && role.IsActive && role.TenantID != nil && *role.TenantID == suite.tenantID
	})).Return(nil).Once()

	role, err := suite.service.CreateRole(ctx, dto.CreateRoleRequest{
		Name:     "bookkeeper",
		TenantID: &suite.tenantID,
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.NotEmpty(role.RoleID)
	suite.Equal(suite.actorID, role.CreatedBy)
	suite.WithinDuration(time.Now(), role.CreatedAt, time.Minute)
}

func TestAuthorizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthorizationServiceTestSuite))
}
