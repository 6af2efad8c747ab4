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

// subRegistrarService handles the sub-registrar's document verification work:
// assignment listing, draft reports and report publication.
type subRegistrarService struct {
	requestRepo  portsrepo.RequestRepository
	workflowRepo portsrepo.WorkflowRepository
	userSvc      portssvc.UserSvcFacade
	metrics      portssvc.MetricsSink
}

// NewSubRegistrarService creates a new SubRegistrarService.
func NewSubRegistrarService(
	requestRepo portsrepo.RequestRepository,
	workflowRepo portsrepo.WorkflowRepository,
	userSvc portssvc.UserSvcFacade,
	metrics portssvc.MetricsSink,
) portssvc.SubRegistrarSvcFacade {
	if metrics == nil {
		metrics = portssvc.NoopMetrics{}
	}
	return &subRegistrarService{
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		userSvc:      userSvc,
		metrics:      metrics,
	}
}

var _ portssvc.SubRegistrarSvcFacade = (*subRegistrarService)(nil)

// ListAssignments lists the caller's assignments, newest first.
func (s *subRegistrarService) ListAssignments(ctx context.Context, subRegistrarID string, limit, offset int) ([]domain.SubRegistrarAssignment, error) {
	if _, err := s.userSvc.RequireRole(ctx, subRegistrarID, domain.RoleSubRegistrar); err != nil {
		return nil, err
	}
	return s.workflowRepo.ListAssignmentsBySubRegistrar(ctx, subRegistrarID, limit, offset)
}

// SaveDraftReport creates or overwrites the caller's draft report for a
// request. Publishing is a separate, one-way step.
func (s *subRegistrarService) SaveDraftReport(ctx context.Context, req dto.SaveReportRequest, subRegistrarID string) (*domain.SubRegistrarReport, error) {
	if _, err := s.userSvc.RequireRole(ctx, subRegistrarID, domain.RoleSubRegistrar); err != nil {
		return nil, err
	}
	assignment, err := s.workflowRepo.FindAssignmentByRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if assignment.SubRegistrarID != subRegistrarID {
		return nil, fmt.Errorf("%w: request %s is assigned to another sub-registrar",
			apperrors.ErrForbidden, req.RequestID)
	}

	report := domain.SubRegistrarReport{
		ID:             uuid.NewString(),
		RequestID:      req.RequestID,
		SubRegistrarID: subRegistrarID,
		DocumentStatus: domain.DocumentStatus(req.DocumentStatus),
		ReportData:     req.ReportData,
		Status:         domain.ReportDraft,
		CreatedAt:      time.Now(),
	}
	if existing, err := s.workflowRepo.FindReportByRequest(ctx, req.RequestID); err == nil {
		if existing.Status == domain.ReportPublished {
			return nil, fmt.Errorf("%w: report for request %s is already published",
				apperrors.ErrConflict, req.RequestID)
		}
		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
	}

	if err := s.workflowRepo.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report for request %s: %w", req.RequestID, err)
	}
	return &report, nil
}

// PublishReport publishes the draft report and advances the request to
// report_published, in one transaction.
func (s *subRegistrarService) PublishReport(ctx context.Context, requestID, subRegistrarID string) (*domain.SubRegistrarReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userSvc.RequireRole(ctx, subRegistrarID, domain.RoleSubRegistrar); err != nil {
		return nil, err
	}
	report, err := s.workflowRepo.FindReportByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if report.SubRegistrarID != subRegistrarID {
		return nil, fmt.Errorf("%w: report for request %s belongs to another sub-registrar",
			apperrors.ErrForbidden, requestID)
	}
	if report.Status == domain.ReportPublished {
		return nil, fmt.Errorf("%w: report for request %s is already published",
			apperrors.ErrConflict, requestID)
	}

	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(domain.ActionPublishReport, request.Status) {
		return nil, fmt.Errorf("%w: report cannot be published while request %s is %s",
			apperrors.ErrConflict, request.Number, request.Status)
	}

	now := time.Now()
	report.Status = domain.ReportPublished
	report.PublishedAt = &now

	event := domain.RequestEvent{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		EventType:   domain.EventReportPublished,
		ActorUserID: subRegistrarID,
		Payload:     fmt.Sprintf("Document report published with status %s", report.DocumentStatus),
		CreatedAt:   now,
	}
	if err := s.workflowRepo.PublishReport(ctx, requestID, *report, domain.AllowedSources(domain.ActionPublishReport), event); err != nil {
		return nil, err
	}
	s.metrics.TransitionRecorded(string(domain.ActionPublishReport))

	logger.Info("Sub-registrar report published",
		slog.String("request_id", requestID),
		slog.String("document_status", string(report.DocumentStatus)),
	)
	return report, nil
}

// GetReport returns the report for a request, draft or published.
func (s *subRegistrarService) GetReport(ctx context.Context, requestID string) (*domain.SubRegistrarReport, error) {
	return s.workflowRepo.FindReportByRequest(ctx, requestID)
}
