package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/core/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

type DistributionServiceTestSuite struct {
	suite.Suite
	mockRequestRepo  *MockRequestRepository
	mockWorkflowRepo *MockWorkflowRepository
	mockUserSvc      *MockUserService
	mockArticleSvc   *MockArticleService
	service          portssvc.DistributionSvcFacade
	ctx              context.Context

	registrarID    string
	subRegistrarID string
	distributorID  string
	requestID      string
	articleA       string
	articleB       string
}

func (suite *DistributionServiceTestSuite) SetupTest() {
	suite.mockRequestRepo = new(MockRequestRepository)
	suite.mockWorkflowRepo = new(MockWorkflowRepository)
	suite.mockUserSvc = new(MockUserService)
	suite.mockArticleSvc = new(MockArticleService)
	suite.service = services.NewDistributionService(
		suite.mockRequestRepo, suite.mockWorkflowRepo, suite.mockUserSvc, suite.mockArticleSvc, nil)
	suite.ctx = context.Background()

	suite.registrarID = uuid.NewString()
	suite.subRegistrarID = uuid.NewString()
	suite.distributorID = uuid.NewString()
	suite.requestID = uuid.NewString()
	suite.articleA = uuid.NewString()
	suite.articleB = uuid.NewString()
}

func (suite *DistributionServiceTestSuite) registrar() *domain.User {
	return &domain.User{
		ID:       suite.registrarID,
		Roles:    []domain.RoleCode{domain.RoleRegistrar},
		IsActive: true,
	}
}

func (suite *DistributionServiceTestSuite) storedRequest(status domain.RequestStatus, total int64) *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:           suite.requestID,
		Number:       "REQ-000010",
		Status:       status,
		AmountTotal:  decimal.NewFromInt(total),
		CurrencyCode: "KZT",
		DueDate:      time.Now().Add(48 * time.Hour),
	}
}

func (suite *DistributionServiceTestSuite) twoSplits(a, b int64) []dto.ExpenseSplitInput {
	return []dto.ExpenseSplitInput{
		{ExpenseArticleID: suite.articleA, Amount: decimal.NewFromInt(a)},
		{ExpenseArticleID: suite.articleB, Amount: decimal.NewFromInt(b)},
	}
}

func (suite *DistributionServiceTestSuite) expectRegistrar() {
	suite.mockUserSvc.On("RequireRole", suite.ctx, suite.registrarID, domain.RoleRegistrar).
		Return(suite.registrar(), nil).Once()
}

func (suite *DistributionServiceTestSuite) TestClassify_Success() {
	suite.expectRegistrar()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusSubmitted, 1000), nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, []string{suite.articleA, suite.articleB}).
		Return([]string{}, nil).Once()
	suite.mockWorkflowRepo.On("Classify", suite.ctx, mock.MatchedBy(func(p portsrepo.ClassifyParams) bool {
		return p.RequestID == suite.requestID &&
			p.ResponsibleRegistrarID == suite.registrarID &&
			p.Target == domain.StatusClassified &&
			len(p.Splits) == 2 &&
			p.Event.EventType == domain.EventClassified
	})).Return(nil).Once()

	splits, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID:     suite.requestID,
		ExpenseSplits: suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.Require().NoError(err)
	suite.Require().Len(splits, 2)
	suite.Equal(suite.requestID, splits[0].RequestID)
	suite.True(splits[0].Amount.Equal(decimal.NewFromInt(400)))
	suite.True(splits[1].Amount.Equal(decimal.NewFromInt(600)))
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestClassify_NonRegistrarForbidden() {
	suite.mockUserSvc.On("RequireRole", suite.ctx, suite.registrarID, domain.RoleRegistrar).
		Return(nil, apperrors.ErrForbidden).Once()

	_, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID:     suite.requestID,
		ExpenseSplits: suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRequestRepo.AssertNotCalled(suite.T(), "FindByID", mock.Anything, mock.Anything)
}

func (suite *DistributionServiceTestSuite) TestClassify_SumMismatchRejectedBeforeWrite() {
	suite.expectRegistrar()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusSubmitted, 1000), nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, mock.Anything).
		Return([]string{}, nil).Once()

	_, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID:     suite.requestID,
		ExpenseSplits: suite.twoSplits(400, 500),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "Classify", mock.Anything, mock.Anything)
}

func (suite *DistributionServiceTestSuite) TestClassify_SumWithinTolerance() {
	suite.expectRegistrar()
	request := suite.storedRequest(domain.StatusSubmitted, 0)
	request.AmountTotal = decimal.RequireFromString("1000.00")
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).Return(request, nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, mock.Anything).
		Return([]string{}, nil).Once()
	suite.mockWorkflowRepo.On("Classify", suite.ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID: suite.requestID,
		ExpenseSplits: []dto.ExpenseSplitInput{
			{ExpenseArticleID: suite.articleA, Amount: decimal.RequireFromString("400.00")},
			{ExpenseArticleID: suite.articleB, Amount: decimal.RequireFromString("600.01")},
		},
	}, suite.registrarID)

	suite.NoError(err)
}

func (suite *DistributionServiceTestSuite) TestClassify_UnknownArticle() {
	suite.expectRegistrar()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusSubmitted, 1000), nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, mock.Anything).
		Return([]string{suite.articleB}, nil).Once()

	_, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID:     suite.requestID,
		ExpenseSplits: suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, suite.articleB)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "Classify", mock.Anything, mock.Anything)
}

func (suite *DistributionServiceTestSuite) TestClassify_NonPositiveAmount() {
	suite.expectRegistrar()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusSubmitted, 1000), nil).Once()

	_, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID: suite.requestID,
		ExpenseSplits: []dto.ExpenseSplitInput{
			{ExpenseArticleID: suite.articleA, Amount: decimal.Zero},
			{ExpenseArticleID: suite.articleB, Amount: decimal.NewFromInt(1000)},
		},
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockArticleSvc.AssertNotCalled(suite.T(), "MissingArticles", mock.Anything, mock.Anything)
}

func (suite *DistributionServiceTestSuite) TestClassify_WrongStatusConflict() {
	suite.expectRegistrar()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusDraft, 1000), nil).Once()

	_, err := suite.service.Classify(suite.ctx, dto.ClassifyRequest{
		RequestID:     suite.requestID,
		ExpenseSplits: suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *DistributionServiceTestSuite) TestDispatch_Success() {
	suite.expectRegistrar()
	suite.mockUserSvc.On("GetUser", suite.ctx, suite.subRegistrarID).
		Return(&domain.User{ID: suite.subRegistrarID}, nil).Once()
	suite.mockUserSvc.On("GetUser", suite.ctx, suite.distributorID).
		Return(&domain.User{ID: suite.distributorID}, nil).Once()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusClassified, 1000), nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, mock.Anything).
		Return([]string{}, nil).Once()
	suite.mockWorkflowRepo.On("Dispatch", suite.ctx, mock.MatchedBy(func(p portsrepo.DispatchParams) bool {
		if p.RequestID != suite.requestID ||
			p.Target != domain.StatusInRegister ||
			p.DistributionStatus != domain.DistributionDistributed ||
			p.Event.EventType != domain.EventDistributed {
			return false
		}
		if !strings.Contains(p.Event.Payload, "1000.00 KZT") {
			return false
		}
		if p.Assignment.SubRegistrarID != suite.subRegistrarID ||
			p.Assignment.Status != domain.AssignmentAssigned {
			return false
		}
		if len(p.DistributorRequests) != 2 {
			return false
		}
		for _, dr := range p.DistributorRequests {
			if dr.DistributorID != suite.distributorID ||
				dr.Status != domain.DistributorPending ||
				dr.OriginalRequestID != suite.requestID {
				return false
			}
		}
		return true
	})).Return(nil).Once()

	resp, err := suite.service.Dispatch(suite.ctx, dto.DispatchRequest{
		RequestID:      suite.requestID,
		SubRegistrarID: suite.subRegistrarID,
		DistributorID:  suite.distributorID,
		ExpenseSplits:  suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.Require().NoError(err)
	suite.Equal(suite.requestID, resp.RequestID)
	suite.Equal(suite.subRegistrarID, resp.SubRegistrarID)
	suite.Equal(suite.distributorID, resp.DistributorID)
	suite.True(resp.TotalAmount.Equal(decimal.NewFromInt(1000)))
	suite.Len(resp.ExpenseSplits, 2)
	suite.Len(resp.DistributorRequests, 2)
	suite.Equal(string(domain.AssignmentAssigned), resp.Assignment.Status)
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDispatch_UnknownSubRegistrar() {
	suite.expectRegistrar()
	suite.mockUserSvc.On("GetUser", suite.ctx, suite.subRegistrarID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Dispatch(suite.ctx, dto.DispatchRequest{
		RequestID:      suite.requestID,
		SubRegistrarID: suite.subRegistrarID,
		DistributorID:  suite.distributorID,
		ExpenseSplits:  suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "Dispatch", mock.Anything, mock.Anything)
}

func (suite *DistributionServiceTestSuite) TestDispatch_InvalidSplitsLeaveNoEffect() {
	suite.expectRegistrar()
	suite.mockUserSvc.On("GetUser", suite.ctx, mock.Anything).
		Return(&domain.User{}, nil).Twice()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusClassified, 1000), nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, mock.Anything).
		Return([]string{}, nil).Once()

	_, err := suite.service.Dispatch(suite.ctx, dto.DispatchRequest{
		RequestID:      suite.requestID,
		SubRegistrarID: suite.subRegistrarID,
		DistributorID:  suite.distributorID,
		ExpenseSplits:  suite.twoSplits(400, 500),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "Dispatch", mock.Anything, mock.Anything)
}

func (suite *DistributionServiceTestSuite) TestDispatch_RepoConflictPropagates() {
	suite.expectRegistrar()
	suite.mockUserSvc.On("GetUser", suite.ctx, mock.Anything).
		Return(&domain.User{}, nil).Twice()
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(suite.storedRequest(domain.StatusClassified, 1000), nil).Once()
	suite.mockArticleSvc.On("MissingArticles", suite.ctx, mock.Anything).
		Return([]string{}, nil).Once()
	suite.mockWorkflowRepo.On("Dispatch", suite.ctx, mock.Anything).
		Return(apperrors.ErrConflict).Once()

	resp, err := suite.service.Dispatch(suite.ctx, dto.DispatchRequest{
		RequestID:      suite.requestID,
		SubRegistrarID: suite.subRegistrarID,
		DistributorID:  suite.distributorID,
		ExpenseSplits:  suite.twoSplits(400, 600),
	}, suite.registrarID)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(resp)
}

func (suite *DistributionServiceTestSuite) TestGetSplits_RequestMustExist() {
	suite.mockRequestRepo.On("FindByID", suite.ctx, suite.requestID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetSplits(suite.ctx, suite.requestID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "FindSplits", mock.Anything, mock.Anything)
}

func TestDistributionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DistributionServiceTestSuite))
}
