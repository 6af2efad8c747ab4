package services

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// RequestSvcFacade drives the payment-request lifecycle. Every transition is
// gated on the domain transition table and appends exactly one event; illegal
// source statuses fail with apperrors.ErrConflict.
type RequestSvcFacade interface {
	CreateRequest(ctx context.Context, req dto.CreateRequest, creatorUserID string) (*domain.PaymentRequest, []domain.PaymentRequestLine, error)
	UpdateRequest(ctx context.Context, requestID string, req dto.UpdateRequest, actorUserID string) (*domain.PaymentRequest, []domain.PaymentRequestLine, error)
	GetRequest(ctx context.Context, requestID string) (*domain.PaymentRequest, []domain.PaymentRequestLine, error)
	ListRequests(ctx context.Context, status domain.RequestStatus, createdBy, responsibleRegistrarID string) ([]domain.PaymentRequest, error)
	ListSplitChildren(ctx context.Context, originalRequestID string) ([]domain.PaymentRequest, error)
	ListEvents(ctx context.Context, requestID string) ([]domain.RequestEvent, error)

	SubmitRequest(ctx context.Context, requestID, actorUserID string) (*domain.PaymentRequest, error)
	ApproveRequest(ctx context.Context, requestID, actorUserID string, comment *string) (*domain.PaymentRequest, error)
	RejectRequest(ctx context.Context, requestID, actorUserID string, comment *string) (*domain.PaymentRequest, error)
	ReturnRequest(ctx context.Context, requestID, actorUserID string, comment *string) (*domain.PaymentRequest, error)
	AddToRegistry(ctx context.Context, requestID, actorUserID string) (*domain.PaymentRequest, error)
	DistributorAction(ctx context.Context, requestID, actorUserID string, req dto.DistributorActionRequest) (*domain.PaymentRequest, error)

	ListRegistry(ctx context.Context) ([]domain.PaymentRequest, error)
	RegistryStatistics(ctx context.Context) (*dto.RegistryStatistics, error)
}
