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

// splitService divides one request into independent per-article child
// requests and retires the parent. The parent's soft delete and every child
// bundle commit in a single transaction; a failure at any child rolls the
// whole split back, parent included.
type splitService struct {
	requestRepo  portsrepo.RequestRepository
	workflowRepo portsrepo.WorkflowRepository
	userSvc      portssvc.UserSvcFacade
	validator    *splitValidator
	metrics      portssvc.MetricsSink
}

// NewSplitService creates a new SplitService.
func NewSplitService(
	requestRepo portsrepo.RequestRepository,
	workflowRepo portsrepo.WorkflowRepository,
	userSvc portssvc.UserSvcFacade,
	articleSvc portssvc.ArticleSvcFacade,
	metrics portssvc.MetricsSink,
) portssvc.SplitterSvcFacade {
	if metrics == nil {
		metrics = portssvc.NoopMetrics{}
	}
	return &splitService{
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		userSvc:      userSvc,
		validator:    newSplitValidator(articleSvc),
		metrics:      metrics,
	}
}

var _ portssvc.SplitterSvcFacade = (*splitService)(nil)

// Split validates the decomposition against the parent's total, then creates
// one child request per split with number "{parent}-NN" and sequence 1..N,
// each carrying its own split, sub-registrar assignment and distributor
// request. The parent ends cancelled, soft deleted, distribution "split".
func (s *splitService) Split(ctx context.Context, req dto.SplitRequest, actorUserID string) (*dto.SplitResponse, error) {
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

	parent, err := s.requestRepo.FindByID(ctx, req.OriginalRequestID)
	if err != nil {
		return nil, err
	}
	if parent.Deleted {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, req.OriginalRequestID)
	}
	if !domain.CanTransition(domain.ActionSplit, parent.Status) {
		return nil, fmt.Errorf("%w: request %s cannot be split from status %s",
			apperrors.ErrConflict, parent.Number, parent.Status)
	}
	// Children are validated against the parent's total, not each other.
	if err := s.validator.Validate(ctx, parent.AmountTotal, req.ExpenseSplits, true); err != nil {
		return nil, err
	}

	parentLines, err := s.requestRepo.FindLines(ctx, req.OriginalRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for request %s: %w", req.OriginalRequestID, err)
	}
	if len(parentLines) == 0 {
		return nil, fmt.Errorf("%w: request %s has no lines to inherit", apperrors.ErrValidation, parent.Number)
	}

	now := time.Now()
	vatShares := prorateVat(parent.VatTotal, parent.AmountTotal, req.ExpenseSplits)
	children := make([]portsrepo.SplitChild, len(req.ExpenseSplits))
	for i, input := range req.ExpenseSplits {
		children[i] = s.buildChild(parent, parentLines[0], input, i+1, req, actorUserID, now, vatShares[i])
	}

	err = s.workflowRepo.Split(ctx, portsrepo.SplitParams{
		ParentID:           parent.ID,
		Sources:            domain.AllowedSources(domain.ActionSplit),
		ParentStatus:       domain.StatusCancelled,
		DistributionStatus: domain.DistributionSplit,
		ParentEvent: domain.RequestEvent{
			ID:          uuid.NewString(),
			RequestID:   parent.ID,
			EventType:   domain.EventSplitAndDeleted,
			ActorUserID: actorUserID,
			Payload:     withComment(fmt.Sprintf("Split into %d requests by expense article", len(children)), req.Comment),
			CreatedAt:   now,
		},
		Children: children,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransitionRecorded(string(domain.ActionSplit))

	logger.Info("Request split by article",
		slog.String("original_request_id", parent.ID),
		slog.Int("children", len(children)),
	)

	resp := &dto.SplitResponse{
		OriginalRequestID: parent.ID,
		TotalAmount:       parent.AmountTotal,
		Status:            string(domain.StatusCancelled),
	}
	for _, c := range children {
		child := c.Request
		line := c.Line
		resp.SplitRequests = append(resp.SplitRequests, dto.ToRequestResponse(&child, []domain.PaymentRequestLine{line}))
	}
	return resp, nil
}

// prorateVat distributes the parent's VAT across the splits proportionally to
// their amounts, rounded to 2 decimal places. The last split absorbs the
// rounding remainder so the shares sum exactly to the parent's VAT.
func prorateVat(vatTotal, amountTotal decimal.Decimal, splits []dto.ExpenseSplitInput) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(splits))
	if len(splits) == 0 || vatTotal.IsZero() || amountTotal.IsZero() {
		return shares
	}
	allocated := decimal.Zero
	for i, split := range splits[:len(splits)-1] {
		shares[i] = vatTotal.Mul(split.Amount).Div(amountTotal).Round(2)
		allocated = allocated.Add(shares[i])
	}
	shares[len(splits)-1] = vatTotal.Sub(allocated)
	return shares
}

// buildChild assembles everything created for one split-group member: the
// child request (number {parent}-NN, classified, lineage set), its single
// line inheriting document fields from the parent's first line, and the
// child's own split, assignment and distributor request.
func (s *splitService) buildChild(
	parent *domain.PaymentRequest,
	template domain.PaymentRequestLine,
	input dto.ExpenseSplitInput,
	sequence int,
	req dto.SplitRequest,
	actorUserID string,
	now time.Time,
	vatShare decimal.Decimal,
) portsrepo.SplitChild {
	childID := uuid.NewString()
	seq := sequence

	child := domain.PaymentRequest{
		ID:                     childID,
		Number:                 fmt.Sprintf("%s-%02d", parent.Number, sequence),
		Title:                  parent.Title,
		CreatedByUserID:        parent.CreatedByUserID,
		CounterpartyID:         parent.CounterpartyID,
		CurrencyCode:           parent.CurrencyCode,
		AmountTotal:            input.Amount,
		VatTotal:               vatShare,
		DueDate:                parent.DueDate,
		Status:                 domain.StatusClassified,
		DistributionStatus:     domain.DistributionPending,
		ResponsibleRegistrarID: parent.ResponsibleRegistrarID,
		ExpenseArticleText:     parent.ExpenseArticleText,
		DocNumber:              parent.DocNumber,
		DocDate:                parent.DocDate,
		DocType:                parent.DocType,
		OriginalRequestID:      &parent.ID,
		SplitSequence:          &seq,
		IsSplitRequest:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorUserID,
		},
	}

	articleID := input.ExpenseArticleID
	line := domain.PaymentRequestLine{
		ID:           uuid.NewString(),
		RequestID:    childID,
		ArticleID:    &articleID,
		Quantity:     template.Quantity,
		AmountNet:    input.Amount,
		VatRateID:    template.VatRateID,
		CurrencyCode: child.CurrencyCode,
		Status:       child.Status,
		Note:         input.Comment,
	}

	return portsrepo.SplitChild{
		Request: child,
		Line:    line,
		Split: domain.ExpenseSplit{
			ID:               uuid.NewString(),
			RequestID:        childID,
			ExpenseArticleID: input.ExpenseArticleID,
			Amount:           input.Amount,
			Comment:          input.Comment,
			ContractID:       input.ContractID,
			Priority:         input.Priority,
		},
		Assignment: domain.SubRegistrarAssignment{
			ID:             uuid.NewString(),
			RequestID:      childID,
			SubRegistrarID: req.SubRegistrarID,
			Status:         domain.AssignmentAssigned,
			AssignedAt:     now,
			CreatedAt:      now,
		},
		DistributorRequest: domain.DistributorRequest{
			ID:                uuid.NewString(),
			OriginalRequestID: childID,
			ExpenseArticleID:  input.ExpenseArticleID,
			Amount:            input.Amount,
			DistributorID:     req.DistributorID,
			Status:            domain.DistributorPending,
			CreatedAt:         now,
		},
		Event: domain.RequestEvent{
			ID:          uuid.NewString(),
			RequestID:   childID,
			EventType:   domain.EventFromSplit,
			ActorUserID: actorUserID,
			Payload:     fmt.Sprintf("Created from %s, split %d of %d", parent.Number, sequence, len(req.ExpenseSplits)),
			CreatedAt:   now,
		},
	}
}
