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

// exportService manages export contracts and the distributor's linkage of
// per-article requests to them.
type exportService struct {
	workflowRepo portsrepo.WorkflowRepository
	userSvc      portssvc.UserSvcFacade
}

// NewExportService creates a new ExportService.
func NewExportService(workflowRepo portsrepo.WorkflowRepository, userSvc portssvc.UserSvcFacade) portssvc.ExportSvcFacade {
	return &exportService{
		workflowRepo: workflowRepo,
		userSvc:      userSvc,
	}
}

var _ portssvc.ExportSvcFacade = (*exportService)(nil)

// CreateContract registers a new active export contract.
func (s *exportService) CreateContract(ctx context.Context, req dto.CreateExportContractRequest, actorUserID string) (*domain.ExportContract, error) {
	if _, err := s.userSvc.RequireRole(ctx, actorUserID, domain.RoleDistributor); err != nil {
		return nil, err
	}

	contract := domain.ExportContract{
		ID:             uuid.NewString(),
		ContractNumber: req.ContractNumber,
		ContractDate:   req.ContractDate,
		CounterpartyID: req.CounterpartyID,
		Amount:         req.Amount,
		CurrencyCode:   req.CurrencyCode,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	if err := s.workflowRepo.CreateExportContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create export contract %s: %w", req.ContractNumber, err)
	}
	return &contract, nil
}

// ListContracts lists export contracts, optionally active-only.
func (s *exportService) ListContracts(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.ExportContract, error) {
	return s.workflowRepo.ListExportContracts(ctx, onlyActive, limit, offset)
}

// LinkContract ties a distributor request to an export contract, completes
// the distributor request and stamps the originating payment request, in one
// transaction.
func (s *exportService) LinkContract(ctx context.Context, distributorRequestID, exportContractID, actorUserID string) (*domain.DistributorExportLink, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userSvc.RequireRole(ctx, actorUserID, domain.RoleDistributor); err != nil {
		return nil, err
	}
	distReq, err := s.workflowRepo.FindDistributorRequest(ctx, distributorRequestID)
	if err != nil {
		return nil, err
	}
	if distReq.DistributorID != actorUserID {
		return nil, fmt.Errorf("%w: distributor request %s belongs to another distributor",
			apperrors.ErrForbidden, distributorRequestID)
	}
	if distReq.Status == domain.DistributorCompleted {
		return nil, fmt.Errorf("%w: distributor request %s is already linked",
			apperrors.ErrConflict, distributorRequestID)
	}

	now := time.Now()
	link := domain.DistributorExportLink{
		ID:                   uuid.NewString(),
		DistributorRequestID: distributorRequestID,
		ExportContractID:     exportContractID,
		LinkedAt:             now,
		LinkedBy:             actorUserID,
	}
	event := domain.RequestEvent{
		ID:          uuid.NewString(),
		RequestID:   distReq.OriginalRequestID,
		EventType:   domain.EventExportLinked,
		ActorUserID: actorUserID,
		Payload:     fmt.Sprintf("Linked to export contract %s", exportContractID),
		CreatedAt:   now,
	}
	if err := s.workflowRepo.LinkExportContract(ctx, link, event); err != nil {
		return nil, err
	}

	logger.Info("Export contract linked",
		slog.String("distributor_request_id", distributorRequestID),
		slog.String("export_contract_id", exportContractID),
	)
	return &link, nil
}

// ListDistributorRequests lists the caller's per-article work items.
func (s *exportService) ListDistributorRequests(ctx context.Context, distributorID string, limit, offset int) ([]domain.DistributorRequest, error) {
	if _, err := s.userSvc.RequireRole(ctx, distributorID, domain.RoleDistributor); err != nil {
		return nil, err
	}
	return s.workflowRepo.ListDistributorRequests(ctx, distributorID, limit, offset)
}
