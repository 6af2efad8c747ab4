package services

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// DistributionSvcFacade performs registrar classification and the
// distribution fan-out (one sub-registrar assignment plus one distributor
// request per expense split).
type DistributionSvcFacade interface {
	Classify(ctx context.Context, req dto.ClassifyRequest, actorUserID string) ([]domain.ExpenseSplit, error)
	Dispatch(ctx context.Context, req dto.DispatchRequest, actorUserID string) (*dto.DispatchResponse, error)
	GetSplits(ctx context.Context, requestID string) ([]domain.ExpenseSplit, error)
}

// SplitterSvcFacade divides one request into independent child requests, one
// per expense article, retiring the parent.
type SplitterSvcFacade interface {
	Split(ctx context.Context, req dto.SplitRequest, actorUserID string) (*dto.SplitResponse, error)
}

// SubRegistrarSvcFacade handles the sub-registrar's document verification work.
type SubRegistrarSvcFacade interface {
	ListAssignments(ctx context.Context, subRegistrarID string, limit, offset int) ([]domain.SubRegistrarAssignment, error)
	SaveDraftReport(ctx context.Context, req dto.SaveReportRequest, subRegistrarID string) (*domain.SubRegistrarReport, error)
	PublishReport(ctx context.Context, requestID, subRegistrarID string) (*domain.SubRegistrarReport, error)
	GetReport(ctx context.Context, requestID string) (*domain.SubRegistrarReport, error)
}

// ExportSvcFacade manages export contracts and their linkage to distributor requests.
type ExportSvcFacade interface {
	CreateContract(ctx context.Context, req dto.CreateExportContractRequest, actorUserID string) (*domain.ExportContract, error)
	ListContracts(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.ExportContract, error)
	LinkContract(ctx context.Context, distributorRequestID, exportContractID, actorUserID string) (*domain.DistributorExportLink, error)
	ListDistributorRequests(ctx context.Context, distributorID string, limit, offset int) ([]domain.DistributorRequest, error)
}
