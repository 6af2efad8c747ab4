package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/core/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsersByRole(ctx context.Context, role domain.RoleCode) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
	ctx          context.Context

	testUserID string
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
	suite.ctx = context.Background()
	suite.testUserID = uuid.NewString()
}

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	createReq := dto.CreateUserRequest{
		FullName: "Aigerim Bekova",
		Email:    "aigerim@example.com",
		Password: "s3cret-pass",
		Roles:    []string{"REGISTRAR"},
	}
	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, createReq.Email).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", suite.ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Email == createReq.Email &&
			user.IsActive &&
			user.HasRole(domain.RoleRegistrar) &&
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(createReq.Password)) == nil
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(suite.ctx, createReq, suite.testUserID)

	suite.Require().NoError(err)
	suite.Equal(createReq.Email, user.Email)
	suite.NotEqual(createReq.Password, user.PasswordHash)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	createReq := dto.CreateUserRequest{
		FullName: "Aigerim Bekova",
		Email:    "aigerim@example.com",
		Password: "s3cret-pass",
	}
	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, createReq.Email).
		Return(&domain.User{Email: createReq.Email}, nil).Once()

	user, err := suite.service.CreateUser(suite.ctx, createReq, suite.testUserID)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(user)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestRequireRole_Holder() {
	stored := &domain.User{
		ID:       suite.testUserID,
		Roles:    []domain.RoleCode{domain.RoleRegistrar},
		IsActive: true,
	}
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.testUserID).Return(stored, nil).Once()

	user, err := suite.service.RequireRole(suite.ctx, suite.testUserID, domain.RoleRegistrar)

	suite.Require().NoError(err)
	suite.Equal(suite.testUserID, user.ID)
}

func (suite *UserServiceTestSuite) TestRequireRole_AdminPassesEveryGate() {
	stored := &domain.User{
		ID:       suite.testUserID,
		Roles:    []domain.RoleCode{domain.RoleAdmin},
		IsActive: true,
	}
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.testUserID).Return(stored, nil).Once()

	_, err := suite.service.RequireRole(suite.ctx, suite.testUserID, domain.RoleDistributor)

	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestRequireRole_MissingRoleForbidden() {
	stored := &domain.User{
		ID:       suite.testUserID,
		Roles:    []domain.RoleCode{domain.RoleExecutor},
		IsActive: true,
	}
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.testUserID).Return(stored, nil).Once()

	_, err := suite.service.RequireRole(suite.ctx, suite.testUserID, domain.RoleRegistrar)

	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestRequireRole_InactiveForbidden() {
	stored := &domain.User{
		ID:       suite.testUserID,
		Roles:    []domain.RoleCode{domain.RoleRegistrar},
		IsActive: false,
	}
	suite.mockUserRepo.On("FindUserByID", suite.ctx, suite.testUserID).Return(stored, nil).Once()

	_, err := suite.service.RequireRole(suite.ctx, suite.testUserID, domain.RoleRegistrar)

	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
