package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// --- Mock RequestRepository ---
type MockRequestRepository struct {
	mock.Mock
}

var _ portsrepo.RequestRepository = (*MockRequestRepository)(nil)

func (m *MockRequestRepository) CreateWithLines(ctx context.Context, req domain.PaymentRequest, lines []domain.PaymentRequestLine) error {
	args := m.Called(ctx, req, lines)
	return args.Error(0)
}

func (m *MockRequestRepository) UpdateWithLines(ctx context.Context, req domain.PaymentRequest, lines []domain.PaymentRequestLine, sources []domain.RequestStatus, event *domain.RequestEvent) error {
	args := m.Called(ctx, req, lines, sources, event)
	return args.Error(0)
}

func (m *MockRequestRepository) TransitionStatus(ctx context.Context, requestID string, sources []domain.RequestStatus, target domain.RequestStatus, event domain.RequestEvent) error {
	args := m.Called(ctx, requestID, sources, target, event)
	return args.Error(0)
}

func (m *MockRequestRepository) FindByID(ctx context.Context, requestID string) (*domain.PaymentRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRequest), args.Error(1)
}

func (m *MockRequestRepository) FindLines(ctx context.Context, requestID string) ([]domain.PaymentRequestLine, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentRequestLine), args.Error(1)
}

func (m *MockRequestRepository) List(ctx context.Context, filter portsrepo.RequestListFilter) ([]domain.PaymentRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentRequest), args.Error(1)
}

func (m *MockRequestRepository) ListChildren(ctx context.Context, originalRequestID string) ([]domain.PaymentRequest, error) {
	args := m.Called(ctx, originalRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentRequest), args.Error(1)
}

func (m *MockRequestRepository) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// --- Mock WorkflowRepository ---
type MockWorkflowRepository struct {
	mock.Mock
}

var _ portsrepo.WorkflowRepository = (*MockWorkflowRepository)(nil)

func (m *MockWorkflowRepository) Classify(ctx context.Context, p portsrepo.ClassifyParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockWorkflowRepository) Dispatch(ctx context.Context, p portsrepo.DispatchParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockWorkflowRepository) Split(ctx context.Context, p portsrepo.SplitParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockWorkflowRepository) FindSplits(ctx context.Context, requestID string) ([]domain.ExpenseSplit, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseSplit), args.Error(1)
}

func (m *MockWorkflowRepository) FindAssignmentByRequest(ctx context.Context, requestID string) (*domain.SubRegistrarAssignment, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubRegistrarAssignment), args.Error(1)
}

func (m *MockWorkflowRepository) ListAssignmentsBySubRegistrar(ctx context.Context, subRegistrarID string, limit, offset int) ([]domain.SubRegistrarAssignment, error) {
	args := m.Called(ctx, subRegistrarID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubRegistrarAssignment), args.Error(1)
}

func (m *MockWorkflowRepository) ListDistributorRequests(ctx context.Context, distributorID string, limit, offset int) ([]domain.DistributorRequest, error) {
	args := m.Called(ctx, distributorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DistributorRequest), args.Error(1)
}

func (m *MockWorkflowRepository) FindDistributorRequest(ctx context.Context, id string) (*domain.DistributorRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributorRequest), args.Error(1)
}

func (m *MockWorkflowRepository) SaveReport(ctx context.Context, report domain.SubRegistrarReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockWorkflowRepository) FindReportByRequest(ctx context.Context, requestID string) (*domain.SubRegistrarReport, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubRegistrarReport), args.Error(1)
}

func (m *MockWorkflowRepository) PublishReport(ctx context.Context, requestID string, publishedReport domain.SubRegistrarReport, sources []domain.RequestStatus, event domain.RequestEvent) error {
	args := m.Called(ctx, requestID, publishedReport, sources, event)
	return args.Error(0)
}

func (m *MockWorkflowRepository) CreateExportContract(ctx context.Context, contract domain.ExportContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockWorkflowRepository) ListExportContracts(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.ExportContract, error) {
	args := m.Called(ctx, onlyActive, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExportContract), args.Error(1)
}

func (m *MockWorkflowRepository) LinkExportContract(ctx context.Context, link domain.DistributorExportLink, event domain.RequestEvent) error {
	args := m.Called(ctx, link, event)
	return args.Error(0)
}

// --- Mock EventRepository ---
type MockEventRepository struct {
	mock.Mock
}

var _ portsrepo.EventRepository = (*MockEventRepository)(nil)

func (m *MockEventRepository) Append(ctx context.Context, event domain.RequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.RequestEvent, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RequestEvent), args.Error(1)
}

// --- Mock UserSvcFacade ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsersByRole(ctx context.Context, role domain.RoleCode) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) RequireRole(ctx context.Context, userID string, role domain.RoleCode) (*domain.User, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock ArticleSvcFacade ---
type MockArticleService struct {
	mock.Mock
}

var _ portssvc.ArticleSvcFacade = (*MockArticleService)(nil)

func (m *MockArticleService) CreateArticle(ctx context.Context, req dto.CreateArticleRequest, creatorUserID string) (*domain.ExpenseArticle, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseArticle), args.Error(1)
}

func (m *MockArticleService) ListArticles(ctx context.Context, onlyActive bool) ([]domain.ExpenseArticle, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseArticle), args.Error(1)
}

func (m *MockArticleService) MissingArticles(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock IdempotencyStore ---
type MockIdempotencyStore struct {
	mock.Mock
}

var _ portsrepo.IdempotencyStore = (*MockIdempotencyStore)(nil)

func (m *MockIdempotencyStore) Find(ctx context.Context, token, userID string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyStore) Save(ctx context.Context, record domain.IdempotencyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Delete(ctx context.Context, token, userID string) error {
	args := m.Called(ctx, token, userID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
