package repositories

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// RequestListFilter narrows request listings. Zero values mean "no filter".
// Deleted requests are excluded unless IncludeDeleted is set.
type RequestListFilter struct {
	Status                 domain.RequestStatus
	CreatedByUserID        string
	ResponsibleRegistrarID string
	IncludeDeleted         bool
}

// RequestRepository persists payment requests and their lines.
type RequestRepository interface {
	// CreateWithLines inserts the request and all its lines in one transaction.
	CreateWithLines(ctx context.Context, req domain.PaymentRequest, lines []domain.PaymentRequestLine) error

	// UpdateWithLines updates the request's editable fields and, when lines is
	// non-nil, replaces the line set wholesale; the optional event is appended
	// in the same transaction. The update applies only while the current status
	// is one of sources, re-checked inside the transaction like TransitionStatus:
	// an edit racing another transition must lose, not silently overwrite it.
	// Returns apperrors.ErrConflict when the precondition does not hold and
	// apperrors.ErrNotFound when the request does not exist.
	UpdateWithLines(ctx context.Context, req domain.PaymentRequest, lines []domain.PaymentRequestLine, sources []domain.RequestStatus, event *domain.RequestEvent) error

	// TransitionStatus moves the request to target if and only if its current
	// status is one of sources, appending the event in the same transaction.
	// Returns apperrors.ErrConflict when the precondition does not hold and
	// apperrors.ErrNotFound when the request does not exist.
	TransitionStatus(ctx context.Context, requestID string, sources []domain.RequestStatus, target domain.RequestStatus, event domain.RequestEvent) error

	FindByID(ctx context.Context, requestID string) (*domain.PaymentRequest, error)
	FindLines(ctx context.Context, requestID string) ([]domain.PaymentRequestLine, error)
	List(ctx context.Context, filter RequestListFilter) ([]domain.PaymentRequest, error)

	// ListChildren returns the split-group children of a parent request,
	// ordered by split sequence.
	ListChildren(ctx context.Context, originalRequestID string) ([]domain.PaymentRequest, error)

	// NextNumber allocates the next human-readable request number.
	NextNumber(ctx context.Context) (string, error)
}
