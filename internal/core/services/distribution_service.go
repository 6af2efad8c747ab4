package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// distributionService performs registrar classification and the distribution
// fan-out. All multi-row mutations are delegated to single-transaction
// repository methods; the service validates everything up front so a rejected
// dispatch leaves no observable effect.
type distributionService struct {
	requestRepo  portsrepo.RequestRepository
	workflowRepo portsrepo.WorkflowRepository
	userSvc      portssvc.UserSvcFacade
	validator    *splitValidator
	metrics      portssvc.MetricsSink
}

// NewDistributionService creates a new DistributionService.
func NewDistributionService(
	requestRepo portsrepo.RequestRepository,
	workflowRepo portsrepo.WorkflowRepository,
	userSvc portssvc.UserSvcFacade,
	articleSvc portssvc.ArticleSvcFacade,
	metrics portssvc.MetricsSink,
) portssvc.DistributionSvcFacade {
	if metrics == nil {
		metrics = portssvc.NoopMetrics{}
	}
	return &distributionService{
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		userSvc:      userSvc,
		validator:    newSplitValidator(articleSvc),
		metrics:      metrics,
	}
}

var _ portssvc.DistributionSvcFacade = (*distributionService)(nil)

// Classify records the registrar's expense-split set for a request, replacing
// any prior generation, and advances the request to classified.
func (s *distributionService) Classify(ctx context.Context, req dto.ClassifyRequest, actorUserID string) ([]domain.ExpenseSplit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userSvc.RequireRole(ctx, actorUserID, domain.RoleRegistrar); err != nil {
		return nil, err
	}
	request, err := s.activeRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(domain.ActionClassify, request.Status) {
		return nil, fmt.Errorf("%w: request %s cannot be classified from status %s",
			apperrors.ErrConflict, request.Number, request.Status)
	}
	if err := s.validator.Validate(ctx, request.AmountTotal, req.ExpenseSplits, false); err != nil {
		return nil, err
	}

	splits := toDomainSplits(request.ID, req.ExpenseSplits, uuid.NewString)
	err = s.workflowRepo.Classify(ctx, portsrepo.ClassifyParams{
		RequestID:              request.ID,
		ResponsibleRegistrarID: actorUserID,
		Splits:                 splits,
		Sources:                domain.AllowedSources(domain.ActionClassify),
		Target:                 domain.StatusClassified,
		Event: domain.RequestEvent{
			ID:          uuid.NewString(),
			RequestID:   request.ID,
			EventType:   domain.EventClassified,
			ActorUserID: actorUserID,
			Payload:     withComment(fmt.Sprintf("Classified into %d expense splits", len(splits)), req.Comment),
			CreatedAt:   time.Now(),
		},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransitionRecorded(string(domain.ActionClassify))

	logger.Info("Request classified",
		slog.String("request_id", request.ID),
		slog.Int("splits", len(splits)),
	)
	return splits, nil
}

// Dispatch fans a request out: replaces the split set, assigns one
// sub-registrar, creates one distributor request per split and moves the
// request into the registry, all in one transaction.
func (s *distributionService) Dispatch(ctx context.Context, req dto.DispatchRequest, actorUserID string) (*dto.DispatchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userSvc.RequireRole(ctx, actorUserID, domain.RoleRegistrar); err != nil {
		return nil, err
	}
	if _, err := s.userSvc.GetUser(ctx, req.SubRegistrarID); err != nil {
		return nil, fmt.Errorf("sub-registrar %s: %w", req.SubRegistrarID, err)
	}
	if _, err := s.userSvc.GetUser(ctx, req.DistributorID); err != nil {
		return nil, fmt.Errorf("distributor %s: %w", req.DistributorID, err)
	}

	request, err := s.activeRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(domain.ActionDispatch, request.Status) {
		return nil, fmt.Errorf("%w: request %s cannot be dispatched from status %s",
			apperrors.ErrConflict, request.Number, request.Status)
	}
	if err := s.validator.Validate(ctx, request.AmountTotal, req.ExpenseSplits, false); err != nil {
		return nil, err
	}

	now := time.Now()
	splits := toDomainSplits(request.ID, req.ExpenseSplits, uuid.NewString)
	assignment := domain.SubRegistrarAssignment{
		ID:             uuid.NewString(),
		RequestID:      request.ID,
		SubRegistrarID: req.SubRegistrarID,
		Status:         domain.AssignmentAssigned,
		AssignedAt:     now,
		CreatedAt:      now,
	}
	distributorRequests := make([]domain.DistributorRequest, len(splits))
	for i, split := range splits {
		distributorRequests[i] = domain.DistributorRequest{
			ID:                uuid.NewString(),
			OriginalRequestID: request.ID,
			ExpenseArticleID:  split.ExpenseArticleID,
			Amount:            split.Amount,
			DistributorID:     req.DistributorID,
			Status:            domain.DistributorPending,
			CreatedAt:         now,
		}
	}

	err = s.workflowRepo.Dispatch(ctx, portsrepo.DispatchParams{
		RequestID:           request.ID,
		Splits:              splits,
		Assignment:          assignment,
		DistributorRequests: distributorRequests,
		Sources:             domain.AllowedSources(domain.ActionDispatch),
		Target:              domain.StatusInRegister,
		DistributionStatus:  domain.DistributionDistributed,
		Event: domain.RequestEvent{
			ID:          uuid.NewString(),
			RequestID:   request.ID,
			EventType:   domain.EventDistributed,
			ActorUserID: actorUserID,
			Payload: withComment(fmt.Sprintf("Distributed %s %s to sub-registrar %s and distributor %s across %d splits",
				request.AmountTotal.StringFixed(2), request.CurrencyCode,
				req.SubRegistrarID, req.DistributorID, len(splits)), req.Comment),
			CreatedAt: now,
		},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransitionRecorded(string(domain.ActionDispatch))

	logger.Info("Request dispatched",
		slog.String("request_id", request.ID),
		slog.String("sub_registrar_id", req.SubRegistrarID),
		slog.String("distributor_id", req.DistributorID),
		slog.Int("distributor_requests", len(distributorRequests)),
	)
	return &dto.DispatchResponse{
		RequestID:           request.ID,
		SubRegistrarID:      req.SubRegistrarID,
		DistributorID:       req.DistributorID,
		TotalAmount:         request.AmountTotal,
		ExpenseSplits:       dto.ToExpenseSplitResponses(splits),
		DistributorRequests: dto.ToDistributorRequestResponses(distributorRequests),
		Assignment:          dto.ToAssignmentPayload(&assignment),
	}, nil
}

// GetSplits returns the current split generation of a request.
func (s *distributionService) GetSplits(ctx context.Context, requestID string) ([]domain.ExpenseSplit, error) {
	if _, err := s.requestRepo.FindByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.workflowRepo.FindSplits(ctx, requestID)
}

func (s *distributionService) activeRequest(ctx context.Context, requestID string) (*domain.PaymentRequest, error) {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Deleted {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
	}
	return request, nil
}
