package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// distributorActions maps the closed set of distributor action kinds to their
// transition. Dispatching through this table keeps the handler free of
// per-role string branching.
var distributorActions = map[string]struct {
	action    domain.Action
	target    domain.RequestStatus
	eventType string
}{
	"approve": {domain.ActionToPay, domain.StatusToPay, domain.EventToPay},
	"decline": {domain.ActionDecline, domain.StatusRejected, domain.EventDeclined},
	"return":  {domain.ActionReturn, domain.StatusReturned, domain.EventReturned},
}

// requestService drives the payment-request lifecycle state machine.
type requestService struct {
	requestRepo portsrepo.RequestRepository
	eventRepo   portsrepo.EventRepository
	metrics     portssvc.MetricsSink
}

// NewRequestService creates a new RequestService.
func NewRequestService(requestRepo portsrepo.RequestRepository, eventRepo portsrepo.EventRepository, metrics portssvc.MetricsSink) portssvc.RequestSvcFacade {
	if metrics == nil {
		metrics = portssvc.NoopMetrics{}
	}
	return &requestService{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		metrics:     metrics,
	}
}

var _ portssvc.RequestSvcFacade = (*requestService)(nil)

// CreateRequest creates a new draft request with its lines. The total is the
// sum of line net amounts.
func (s *requestService) CreateRequest(ctx context.Context, req dto.CreateRequest, creatorUserID string) (*domain.PaymentRequest, []domain.PaymentRequestLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	number, err := s.requestRepo.NextNumber(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate request number: %w", err)
	}

	now := time.Now()
	request := domain.PaymentRequest{
		ID:                 uuid.NewString(),
		Number:             number,
		Title:              req.Title,
		CreatedByUserID:    creatorUserID,
		CounterpartyID:     req.CounterpartyID,
		CurrencyCode:       req.CurrencyCode,
		VatTotal:           req.VatTotal,
		DueDate:            req.DueDate,
		Status:             domain.StatusDraft,
		DistributionStatus: domain.DistributionPending,
		ExpenseArticleText: req.ExpenseArticleText,
		DocNumber:          req.DocNumber,
		DocDate:            req.DocDate,
		DocType:            req.DocType,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	lines, total := buildLines(request.ID, req.Lines, domain.StatusDraft)
	request.AmountTotal = total

	if err := s.requestRepo.CreateWithLines(ctx, request, lines); err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Info("Payment request created",
		slog.String("request_id", request.ID),
		slog.String("number", request.Number),
		slog.String("amount_total", total.String()),
	)
	return &request, lines, nil
}

// UpdateRequest edits a request. Editing is legal only from draft, rejected
// or returned; a rejected/returned request drops back to draft on edit.
func (s *requestService) UpdateRequest(ctx context.Context, requestID string, req dto.UpdateRequest, actorUserID string) (*domain.PaymentRequest, []domain.PaymentRequestLine, error) {
	request, err := s.activeRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.CreatedByUserID != actorUserID {
		return nil, nil, fmt.Errorf("%w: only the request owner may edit it", apperrors.ErrForbidden)
	}
	if !domain.CanTransition(domain.ActionEdit, request.Status) {
		return nil, nil, fmt.Errorf("%w: request %s cannot be edited from status %s",
			apperrors.ErrConflict, request.Number, request.Status)
	}

	var event *domain.RequestEvent
	if request.Status == domain.StatusRejected || request.Status == domain.StatusReturned {
		e := s.newEvent(request.ID, domain.EventStatusChanged, actorUserID,
			fmt.Sprintf("Status changed from %s to %s on edit", request.Status, domain.StatusDraft))
		event = &e
		request.Status = domain.StatusDraft
	}

	applyRequestUpdate(request, req)

	var lines []domain.PaymentRequestLine
	if req.Lines != nil {
		var total decimal.Decimal
		lines, total = buildLines(request.ID, req.Lines, request.Status)
		request.AmountTotal = total
	}

	request.LastUpdatedAt = time.Now()
	request.LastUpdatedBy = actorUserID

	// The store re-checks the edit source set inside its transaction; an edit
	// racing another transition loses with ErrConflict.
	if err := s.requestRepo.UpdateWithLines(ctx, *request, lines, domain.AllowedSources(domain.ActionEdit), event); err != nil {
		return nil, nil, fmt.Errorf("failed to update request %s: %w", requestID, err)
	}

	if lines == nil {
		lines, err = s.requestRepo.FindLines(ctx, requestID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load lines for request %s: %w", requestID, err)
		}
	}
	return request, lines, nil
}

// GetRequest returns a request with its lines.
func (s *requestService) GetRequest(ctx context.Context, requestID string) (*domain.PaymentRequest, []domain.PaymentRequestLine, error) {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.requestRepo.FindLines(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lines for request %s: %w", requestID, err)
	}
	return request, lines, nil
}

// ListRequests lists non-deleted requests matching the filters.
func (s *requestService) ListRequests(ctx context.Context, status domain.RequestStatus, createdBy, responsibleRegistrarID string) ([]domain.PaymentRequest, error) {
	return s.requestRepo.List(ctx, portsrepo.RequestListFilter{
		Status:                 status,
		CreatedByUserID:        createdBy,
		ResponsibleRegistrarID: responsibleRegistrarID,
	})
}

// ListSplitChildren lists the split-group children of a parent request.
func (s *requestService) ListSplitChildren(ctx context.Context, originalRequestID string) ([]domain.PaymentRequest, error) {
	return s.requestRepo.ListChildren(ctx, originalRequestID)
}

// ListEvents returns the append-only event feed for a request, insertion ordered.
func (s *requestService) ListEvents(ctx context.Context, requestID string) ([]domain.RequestEvent, error) {
	if _, err := s.requestRepo.FindByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByRequest(ctx, requestID)
}

// SubmitRequest moves a draft request into the registrar's queue.
func (s *requestService) SubmitRequest(ctx context.Context, requestID, actorUserID string) (*domain.PaymentRequest, error) {
	return s.transition(ctx, requestID, actorUserID, domain.ActionSubmit, domain.StatusSubmitted,
		domain.EventSubmitted, "Request submitted for classification")
}

// ApproveRequest approves a classified request.
func (s *requestService) ApproveRequest(ctx context.Context, requestID, actorUserID string, comment *string) (*domain.PaymentRequest, error) {
	return s.transition(ctx, requestID, actorUserID, domain.ActionApprove, domain.StatusApproved,
		domain.EventApproved, withComment("Request approved", comment))
}

// RejectRequest rejects a submitted or classified request back to the owner.
func (s *requestService) RejectRequest(ctx context.Context, requestID, actorUserID string, comment *string) (*domain.PaymentRequest, error) {
	return s.transition(ctx, requestID, actorUserID, domain.ActionReject, domain.StatusRejected,
		domain.EventRejected, withComment("Request rejected", comment))
}

// ReturnRequest returns a request to the executor for revision.
func (s *requestService) ReturnRequest(ctx context.Context, requestID, actorUserID string, comment *string) (*domain.PaymentRequest, error) {
	return s.transition(ctx, requestID, actorUserID, domain.ActionReturn, domain.StatusReturned,
		domain.EventReturned, withComment("Request returned to executor", comment))
}

// AddToRegistry places an approved request into the treasury registry.
func (s *requestService) AddToRegistry(ctx context.Context, requestID, actorUserID string) (*domain.PaymentRequest, error) {
	return s.transition(ctx, requestID, actorUserID, domain.ActionAddToRegistry, domain.StatusInRegister,
		domain.EventAddedToRegistry, "Request added to payment registry")
}

// DistributorAction applies one of the closed set of distributor actions.
func (s *requestService) DistributorAction(ctx context.Context, requestID, actorUserID string, req dto.DistributorActionRequest) (*domain.PaymentRequest, error) {
	entry, ok := distributorActions[req.Action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown distributor action %q", apperrors.ErrValidation, req.Action)
	}
	return s.transition(ctx, requestID, actorUserID, entry.action, entry.target,
		entry.eventType, withComment(fmt.Sprintf("Distributor action: %s", req.Action), req.Comment))
}

// ListRegistry lists requests currently in the treasury registry.
func (s *requestService) ListRegistry(ctx context.Context) ([]domain.PaymentRequest, error) {
	return s.requestRepo.List(ctx, portsrepo.RequestListFilter{Status: domain.StatusInRegister})
}

// RegistryStatistics summarizes the treasury registry by amount and due date.
func (s *requestService) RegistryStatistics(ctx context.Context) (*dto.RegistryStatistics, error) {
	entries, err := s.ListRegistry(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.RegistryStatistics{
		TotalEntries: len(entries),
		TotalAmount:  decimal.Zero,
		Currency:     "KZT",
	}
	today := time.Now().Truncate(24 * time.Hour)
	for _, e := range entries {
		stats.TotalAmount = stats.TotalAmount.Add(e.AmountTotal)
		due := e.DueDate.Truncate(24 * time.Hour)
		switch {
		case due.Before(today):
			stats.OverdueCount++
		case due.Equal(today):
			stats.DueTodayCount++
		}
	}
	if len(entries) > 0 {
		stats.Currency = entries[0].CurrencyCode
	}
	return stats, nil
}

// transition performs a single status transition: gate on the transition
// table, then let the store re-check the same source set inside its
// transaction while appending the event.
func (s *requestService) transition(ctx context.Context, requestID, actorUserID string, action domain.Action, target domain.RequestStatus, eventType, payload string) (*domain.PaymentRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	request, err := s.activeRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(action, request.Status) {
		return nil, fmt.Errorf("%w: %s is not allowed from status %s",
			apperrors.ErrConflict, action, request.Status)
	}

	event := s.newEvent(request.ID, eventType, actorUserID, payload)
	if err := s.requestRepo.TransitionStatus(ctx, request.ID, domain.AllowedSources(action), target, event); err != nil {
		return nil, err
	}
	s.metrics.TransitionRecorded(string(action))

	logger.Info("Request transition applied",
		slog.String("request_id", request.ID),
		slog.String("action", string(action)),
		slog.String("from", string(request.Status)),
		slog.String("to", string(target)),
	)
	request.Status = target
	return request, nil
}

// activeRequest loads a request and hides soft-deleted ones.
func (s *requestService) activeRequest(ctx context.Context, requestID string) (*domain.PaymentRequest, error) {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Deleted {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
	}
	return request, nil
}

func (s *requestService) newEvent(requestID, eventType, actorUserID, payload string) domain.RequestEvent {
	return domain.RequestEvent{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		EventType:   eventType,
		ActorUserID: actorUserID,
		Payload:     payload,
		CreatedAt:   time.Now(),
	}
}

func buildLines(requestID string, inputs []dto.CreateRequestLine, status domain.RequestStatus) ([]domain.PaymentRequestLine, decimal.Decimal) {
	lines := make([]domain.PaymentRequestLine, len(inputs))
	total := decimal.Zero
	for i, l := range inputs {
		lines[i] = domain.PaymentRequestLine{
			ID:           uuid.NewString(),
			RequestID:    requestID,
			ArticleID:    l.ArticleID,
			Quantity:     l.Quantity,
			AmountNet:    l.AmountNet,
			VatRateID:    l.VatRateID,
			CurrencyCode: l.CurrencyCode,
			Status:       status,
			Note:         l.Note,
		}
		total = total.Add(l.AmountNet)
	}
	return lines, total
}

func applyRequestUpdate(request *domain.PaymentRequest, req dto.UpdateRequest) {
	if req.Title != nil {
		request.Title = *req.Title
	}
	if req.CounterpartyID != nil {
		request.CounterpartyID = *req.CounterpartyID
	}
	if req.CurrencyCode != nil {
		request.CurrencyCode = *req.CurrencyCode
	}
	if req.DueDate != nil {
		request.DueDate = *req.DueDate
	}
	if req.ExpenseArticleText != nil {
		request.ExpenseArticleText = req.ExpenseArticleText
	}
	if req.DocNumber != nil {
		request.DocNumber = req.DocNumber
	}
	if req.DocDate != nil {
		request.DocDate = req.DocDate
	}
	if req.DocType != nil {
		request.DocType = req.DocType
	}
}

func withComment(base string, comment *string) string {
	if comment == nil || *comment == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, *comment)
}
