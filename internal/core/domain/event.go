package domain

import "time"

// Event type tags. One event is appended per successful transition; the tag
// names the transition.
const (
	EventSubmitted       = "SUBMITTED"
	EventClassified      = "CLASSIFIED"
	EventApproved        = "APPROVED"
	EventRejected        = "REJECTED"
	EventReturned        = "RETURNED"
	EventAddedToRegistry = "ADDED_TO_REGISTRY"
	EventDistributed     = "DISTRIBUTED"
	EventSplitAndDeleted = "SPLIT_AND_DELETED"
	EventFromSplit       = "CREATED_FROM_SPLIT"
	EventStatusChanged   = "STATUS_CHANGED"
	EventToPay           = "TO_PAY"
	EventDeclined        = "DECLINED"
	EventReportPublished = "REPORT_PUBLISHED"
	EventExportLinked    = "EXPORT_LINKED"
)

// RequestEvent is one append-only audit record for a request. Events are
// never mutated or deleted; the feed, ordered by insertion, is the only
// source of "what happened and when".
type RequestEvent struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"requestID"`
	EventType   string    `json:"eventType"`
	ActorUserID string    `json:"actorUserID"`
	Payload     string    `json:"payload"`
	CreatedAt   time.Time `json:"createdAt"`
}
