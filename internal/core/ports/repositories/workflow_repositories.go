package repositories

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// ClassifyParams carries a registrar classification to the store. Splits
// replace any prior generation for the request; the status update is
// conditional on Sources and the event is appended, all in one transaction.
type ClassifyParams struct {
	RequestID              string
	ResponsibleRegistrarID string
	Splits                 []domain.ExpenseSplit
	Sources                []domain.RequestStatus
	Target                 domain.RequestStatus
	Event                  domain.RequestEvent
}

// DispatchParams carries a full distribution fan-out: split replacement, one
// sub-registrar assignment, one distributor request per split, the request's
// status/distribution advance, and the DISTRIBUTED event. All steps commit or
// none do.
type DispatchParams struct {
	RequestID           string
	Splits              []domain.ExpenseSplit
	Assignment          domain.SubRegistrarAssignment
	DistributorRequests []domain.DistributorRequest
	Sources             []domain.RequestStatus
	Target              domain.RequestStatus
	DistributionStatus  domain.DistributionStatus
	Event               domain.RequestEvent
}

// SplitChild bundles everything created for one split-by-article child.
type SplitChild struct {
	Request            domain.PaymentRequest
	Line               domain.PaymentRequestLine
	Split              domain.ExpenseSplit
	Assignment         domain.SubRegistrarAssignment
	DistributorRequest domain.DistributorRequest
	Event              domain.RequestEvent
}

// SplitParams carries a complete split-by-article: the parent's soft delete
// (conditional on Sources) plus all children, in one transaction. A failure at
// any child rolls back the parent's soft delete too.
type SplitParams struct {
	ParentID           string
	Sources            []domain.RequestStatus
	ParentStatus       domain.RequestStatus
	DistributionStatus domain.DistributionStatus
	ParentEvent        domain.RequestEvent
	Children           []SplitChild
}

// WorkflowRepository persists the distribution workflow: splits, assignments,
// distributor requests, sub-registrar reports and export links.
type WorkflowRepository interface {
	Classify(ctx context.Context, p ClassifyParams) error
	Dispatch(ctx context.Context, p DispatchParams) error
	Split(ctx context.Context, p SplitParams) error

	FindSplits(ctx context.Context, requestID string) ([]domain.ExpenseSplit, error)
	FindAssignmentByRequest(ctx context.Context, requestID string) (*domain.SubRegistrarAssignment, error)
	ListAssignmentsBySubRegistrar(ctx context.Context, subRegistrarID string, limit, offset int) ([]domain.SubRegistrarAssignment, error)
	ListDistributorRequests(ctx context.Context, distributorID string, limit, offset int) ([]domain.DistributorRequest, error)
	FindDistributorRequest(ctx context.Context, id string) (*domain.DistributorRequest, error)

	SaveReport(ctx context.Context, report domain.SubRegistrarReport) error
	FindReportByRequest(ctx context.Context, requestID string) (*domain.SubRegistrarReport, error)
	// PublishReport marks the report published, advances the request to
	// report_published and appends the event, in one transaction.
	PublishReport(ctx context.Context, requestID string, publishedReport domain.SubRegistrarReport, sources []domain.RequestStatus, event domain.RequestEvent) error

	CreateExportContract(ctx context.Context, contract domain.ExportContract) error
	ListExportContracts(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.ExportContract, error)
	// LinkExportContract creates the link, completes the distributor request
	// and stamps the originating payment request, in one transaction.
	LinkExportContract(ctx context.Context, link domain.DistributorExportLink, event domain.RequestEvent) error
}
