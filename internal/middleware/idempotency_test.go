package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

type MockIdempotencyService struct {
	mock.Mock
}

var _ portssvc.IdempotencySvcFacade = (*MockIdempotencyService)(nil)

func (m *MockIdempotencyService) Check(ctx context.Context, token, userID, requestHash string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, token, userID, requestHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyService) Store(ctx context.Context, token, userID, requestHash string, statusCode int, contentType string, response []byte) error {
	args := m.Called(ctx, token, userID, requestHash, statusCode, contentType, response)
	return args.Error(0)
}

func (m *MockIdempotencyService) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type IdempotencyMiddlewareTestSuite struct {
	suite.Suite
	mockSvc      *MockIdempotencyService
	router       *gin.Engine
	handlerCalls int

	userID string
}

func (suite *IdempotencyMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockSvc = new(MockIdempotencyService)
	suite.handlerCalls = 0
	suite.userID = "user-1"

	suite.router = gin.New()
	authStub := func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.WithUserID(c.Request.Context(), suite.userID))
		c.Next()
	}
	suite.router.POST("/requests", authStub, middleware.IdempotencyMiddleware(suite.mockSvc), func(c *gin.Context) {
		suite.handlerCalls++
		c.JSON(http.StatusCreated, gin.H{"id": "req-1"})
	})
	suite.router.POST("/fail", authStub, middleware.IdempotencyMiddleware(suite.mockSvc), func(c *gin.Context) {
		suite.handlerCalls++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
}

func (suite *IdempotencyMiddlewareTestSuite) perform(path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set(middleware.IdempotencyHeader, token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *IdempotencyMiddlewareTestSuite) TestNoHeaderExecutesWithoutGuard() {
	w := suite.perform("/requests", "", `{"title":"x"}`)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(1, suite.handlerCalls)
	suite.mockSvc.AssertNotCalled(suite.T(), "Check",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IdempotencyMiddlewareTestSuite) TestMalformedTokenRejected() {
	w := suite.perform("/requests", "short", `{"title":"x"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(0, suite.handlerCalls)
}

func (suite *IdempotencyMiddlewareTestSuite) TestTokenWithIllegalCharactersRejected() {
	w := suite.perform("/requests", "has spaces inside!", `{"title":"x"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(0, suite.handlerCalls)
}

func (suite *IdempotencyMiddlewareTestSuite) TestFirstExecutionStoresResponse() {
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Return(nil, nil).Once()
	suite.mockSvc.On("Store", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string"),
		http.StatusCreated, "application/json; charset=utf-8", []byte(`{"id":"req-1"}`)).Return(nil).Once()

	w := suite.perform("/requests", "token-abc-00001", `{"title":"x"}`)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(1, suite.handlerCalls)
	suite.mockSvc.AssertExpectations(suite.T())
}

func (suite *IdempotencyMiddlewareTestSuite) TestReplayReturnsCachedBytesWithoutHandler() {
	cached := &domain.IdempotencyRecord{
		StatusCode: http.StatusCreated,
		Response:   []byte(`{"id":"req-1"}`),
	}
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Return(cached, nil).Once()

	w := suite.perform("/requests", "token-abc-00001", `{"title":"x"}`)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(`{"id":"req-1"}`, w.Body.String())
	suite.Equal("true", w.Header().Get("X-Idempotent-Replay"))
	suite.Equal(0, suite.handlerCalls)
	suite.mockSvc.AssertNotCalled(suite.T(), "Store",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IdempotencyMiddlewareTestSuite) TestReplayPreservesOriginalContentType() {
	cached := &domain.IdempotencyRecord{
		StatusCode:  http.StatusCreated,
		ContentType: "text/csv; charset=utf-8",
		Response:    []byte("id,title\nreq-1,x\n"),
	}
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Return(cached, nil).Once()

	w := suite.perform("/requests", "token-abc-00001", `{"title":"x"}`)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	suite.Equal("id,title\nreq-1,x\n", w.Body.String())
	suite.Equal(0, suite.handlerCalls)
}

func (suite *IdempotencyMiddlewareTestSuite) TestReplayWithoutStoredContentTypeDefaultsToJSON() {
	cached := &domain.IdempotencyRecord{
		StatusCode: http.StatusCreated,
		Response:   []byte(`{"id":"req-1"}`),
	}
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Return(cached, nil).Once()

	w := suite.perform("/requests", "token-abc-00001", `{"title":"x"}`)

	suite.Equal("application/json; charset=utf-8", w.Header().Get("Content-Type"))
}

func (suite *IdempotencyMiddlewareTestSuite) TestHashMismatchConflicts() {
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrConflict).Once()

	w := suite.perform("/requests", "token-abc-00001", `{"title":"different"}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(0, suite.handlerCalls)
}

func (suite *IdempotencyMiddlewareTestSuite) TestBodyHashDiffersPerBody() {
	var hashes []string
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			hashes = append(hashes, args.String(3))
		}).Return(nil, nil).Twice()
	suite.mockSvc.On("Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Twice()

	suite.perform("/requests", "token-abc-00001", `{"title":"one"}`)
	suite.perform("/requests", "token-abc-00001", `{"title":"two"}`)

	suite.Require().Len(hashes, 2)
	suite.NotEqual(hashes[0], hashes[1])
	suite.Len(hashes[0], 64)
}

func (suite *IdempotencyMiddlewareTestSuite) TestServerErrorNotCached() {
	suite.mockSvc.On("Check", mock.Anything, "token-abc-00001", suite.userID, mock.AnythingOfType("string")).
		Return(nil, nil).Once()

	w := suite.perform("/fail", "token-abc-00001", `{"title":"x"}`)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal(1, suite.handlerCalls)
	suite.mockSvc.AssertNotCalled(suite.T(), "Store",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IdempotencyMiddlewareTestSuite) TestMissingUserUnauthorized() {
	router := gin.New()
	router.POST("/requests", middleware.IdempotencyMiddleware(suite.mockSvc), func(c *gin.Context) {
		suite.handlerCalls++
		c.JSON(http.StatusCreated, gin.H{"id": "req-1"})
	})

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{}`))
	req.Header.Set(middleware.IdempotencyHeader, "token-abc-00001")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(0, suite.handlerCalls)
}

func (suite *IdempotencyMiddlewareTestSuite) TestHandlerStillReadsBodyAfterHashing() {
	suite.mockSvc.On("Check", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil).Once()
	suite.mockSvc.On("Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	router := gin.New()
	authStub := func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.WithUserID(c.Request.Context(), suite.userID))
		c.Next()
	}
	var received struct {
		Title string `json:"title"`
	}
	router.POST("/echo", authStub, middleware.IdempotencyMiddleware(suite.mockSvc), func(c *gin.Context) {
		suite.NoError(c.ShouldBindJSON(&received))
		c.JSON(http.StatusOK, received)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"title":"kept"}`))
	req.Header.Set(middleware.IdempotencyHeader, "token-abc-00001")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("kept", received.Title)
}

func TestIdempotencyMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(IdempotencyMiddlewareTestSuite))
}
