package services_test

import (
	"context"
	"testing"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/core/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var seedRoleNames = []string{
	services.RoleViewer,
	services.RoleAuditor,
	services.RoleAccountant,
	services.RoleAdmin,
	services.RoleOwner,
}

type SeedRolesTestSuite struct {
	suite.Suite
	mockAuthSvc *MockAuthorizationService
	actorID     string
}

func (suite *SeedRolesTestSuite) SetupTest() {
	suite.mockAuthSvc = new(MockAuthorizationService)
	suite.actorID = "system:bootstrap"
}

func (suite *SeedRolesTestSuite) TestSeed_FreshInstall() {
	ctx := context.Background()

	for _, name := range seedRoleNames {
		roleName := name
		suite.mockAuthSvc.On("CreateRole", ctx, mock.MatchedBy(func(req dto.CreateRoleRequest) bool {
			return req.Name == roleName && req.TenantID == nil
		}), suite.actorID).Return(&domain.Role{RoleID: uuid.NewString(), Name: roleName, IsActive: true}, nil).Once()
	}
	suite.mockAuthSvc.On("Grant", ctx, mock.MatchedBy(func(req dto.GrantRequest) bool {
		return req.Scope == domain.ScopeGlobal && req.Effect == domain.EffectAllow && req.SubjectKind == domain.SubjectRole
	}), suite.actorID).Return(&domain.PermissionGrant{GrantID: uuid.NewString()}, nil).Times(7)
	suite.mockAuthSvc.On("AddRoleInclusion", ctx, mock.AnythingOfType("dto.AddRoleInclusionRequest"), suite.actorID).
		Return(nil).Times(4)

	err := services.SeedBaselineRoles(ctx, suite.mockAuthSvc, suite.actorID)

	suite.Require().NoError(err)
	suite.mockAuthSvc.AssertExpectations(suite.T())
}

func (suite *SeedRolesTestSuite) TestSeed_RetryRepairsInclusions() {
	ctx := context.Background()

	// Every role already exists from an earlier run that died before the
	// inclusion pass; the retry must recover the role IDs and wire the
	// hierarchy anyway.
	roleIDs := map[string]string{}
	for _, name := range seedRoleNames {
		roleIDs[name] = uuid.NewString()
	}

	suite.mockAuthSvc.On("CreateRole", ctx, mock.AnythingOfType("dto.CreateRoleRequest"), suite.actorID).
		Return(nil, apperrors.ErrDuplicate).Times(5)
	for _, name := range seedRoleNames {
		suite.mockAuthSvc.On("GetRoleByName", ctx, name, (*string)(nil)).
			Return(&domain.Role{RoleID: roleIDs[name], Name: name, IsActive: true}, nil).Once()
	}
	suite.mockAuthSvc.On("AddRoleInclusion", ctx, mock.MatchedBy(func(req dto.AddRoleInclusionRequest) bool {
		switch req.ParentRoleID {
		case roleIDs[services.RoleAuditor], roleIDs[services.RoleAccountant]:
			return req.IncludedRoleID == roleIDs[services.RoleViewer]
		case roleIDs[services.RoleAdmin]:
			return req.IncludedRoleID == roleIDs[services.RoleAccountant]
		case roleIDs[services.RoleOwner]:
			return req.IncludedRoleID == roleIDs[services.RoleAdmin]
		}
		return false
	}), suite.actorID).Return(nil).Times(4)

	err := services.SeedBaselineRoles(ctx, suite.mockAuthSvc, suite.actorID)

	suite.Require().NoError(err)
	suite.mockAuthSvc.AssertExpectations(suite.T())
	suite.mockAuthSvc.AssertNotCalled(suite.T(), "Grant", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeedRolesTestSuite(t *testing.T) {
	suite.Run(t, new(SeedRolesTestSuite))
}
