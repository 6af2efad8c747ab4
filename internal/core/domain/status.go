package domain

// RequestStatus is the lifecycle status of a payment request. The values are
// the wire contract for clients and are persisted verbatim; changing this
// vocabulary is a reviewed contract change, not a data migration.
type RequestStatus string

const (
	StatusDraft              RequestStatus = "draft"
	StatusSubmitted          RequestStatus = "submitted"
	StatusClassified         RequestStatus = "classified"
	StatusReturned           RequestStatus = "returned"
	StatusApproved           RequestStatus = "approved"
	StatusApprovedOnBehalf   RequestStatus = "approved-on-behalf"
	StatusToPay              RequestStatus = "to-pay"
	StatusInRegister         RequestStatus = "in-register"
	StatusApprovedForPayment RequestStatus = "approved-for-payment"
	StatusPaidFull           RequestStatus = "paid-full"
	StatusPaidPartial        RequestStatus = "paid-partial"
	StatusRejected           RequestStatus = "rejected"
	StatusCancelled          RequestStatus = "cancelled"
	StatusClosed             RequestStatus = "closed"
	StatusDistributed        RequestStatus = "distributed"
	StatusSplited            RequestStatus = "splited"
	StatusReportPublished    RequestStatus = "report_published"
	StatusExportLinked       RequestStatus = "export_linked"
)

// DistributionStatus is the independent distribution sub-state of a request.
// The base progression is pending/in_progress/completed/failed; the workflow
// additionally writes the markers "distributed" (after dispatch) and "split"
// (after split-by-article).
type DistributionStatus string

const (
	DistributionPending     DistributionStatus = "pending"
	DistributionInProgress  DistributionStatus = "in_progress"
	DistributionCompleted   DistributionStatus = "completed"
	DistributionFailed      DistributionStatus = "failed"
	DistributionDistributed DistributionStatus = "distributed"
	DistributionSplit       DistributionStatus = "split"
)

// AssignmentStatus is the status of a sub-registrar assignment.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentRejected   AssignmentStatus = "rejected"
)

// DistributorRequestStatus is the status of a per-article distributor request.
type DistributorRequestStatus string

const (
	DistributorPending    DistributorRequestStatus = "pending"
	DistributorInProgress DistributorRequestStatus = "in_progress"
	DistributorCompleted  DistributorRequestStatus = "completed"
	DistributorFailed     DistributorRequestStatus = "failed"
)

// DocumentStatus describes document verification progress on a sub-registrar report.
type DocumentStatus string

const (
	DocumentRequired DocumentStatus = "required"
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// ReportStatus is the status of a sub-registrar report.
type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportPublished ReportStatus = "published"
)

// RoleCode identifies a workflow role.
type RoleCode string

const (
	RoleAdmin        RoleCode = "ADMIN"
	RoleExecutor     RoleCode = "EXECUTOR"
	RoleRegistrar    RoleCode = "REGISTRAR"
	RoleSubRegistrar RoleCode = "SUB_REGISTRAR"
	RoleDistributor  RoleCode = "DISTRIBUTOR"
	RoleTreasurer    RoleCode = "TREASURER"
)

// Action is a closed set of state-machine transitions on a payment request.
type Action string

const (
	ActionSubmit        Action = "SUBMIT"
	ActionEdit          Action = "EDIT"
	ActionClassify      Action = "CLASSIFY"
	ActionApprove       Action = "APPROVE"
	ActionReject        Action = "REJECT"
	ActionReturn        Action = "RETURN"
	ActionAddToRegistry Action = "ADD_TO_REGISTRY"
	ActionDispatch      Action = "DISPATCH"
	ActionSplit         Action = "SPLIT"
	ActionToPay         Action = "TO_PAY"
	ActionDecline       Action = "DECLINE"
	ActionPublishReport Action = "PUBLISH_REPORT"
)

// allowedSources is the single authoritative transition table. Every mutating
// operation gates on it before touching the store, and the store re-checks the
// same source set inside the transaction.
//
// Classify, dispatch and split all accept "submitted" directly in addition to
// "classified"/"approved": the single-step registrar workflow enters the
// pipeline without a separate classification round-trip.
var allowedSources = map[Action][]RequestStatus{
	ActionSubmit:        {StatusDraft},
	ActionEdit:          {StatusDraft, StatusRejected, StatusReturned},
	ActionClassify:      {StatusSubmitted, StatusClassified, StatusApproved},
	ActionApprove:       {StatusClassified},
	ActionReject:        {StatusSubmitted, StatusClassified},
	ActionReturn:        {StatusApproved, StatusClassified, StatusInRegister},
	ActionAddToRegistry: {StatusApproved},
	ActionDispatch:      {StatusSubmitted, StatusClassified, StatusApproved},
	ActionSplit:         {StatusSubmitted, StatusClassified, StatusApproved},
	ActionToPay:         {StatusApproved},
	ActionDecline:       {StatusApproved},
	ActionPublishReport: {StatusInRegister, StatusDistributed},
}

// CanTransition reports whether action is legal from the given status.
func CanTransition(action Action, from RequestStatus) bool {
	for _, s := range allowedSources[action] {
		if s == from {
			return true
		}
	}
	return false
}

// AllowedSources returns the set of statuses action may start from. The slice
// is shared; callers must not mutate it.
func AllowedSources(action Action) []RequestStatus {
	return allowedSources[action]
}
