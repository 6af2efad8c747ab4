package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a corporate payment request moving through the
// executor/registrar/sub-registrar/distributor/treasurer pipeline.
//
// Requests are never physically deleted: split-by-article retires the parent
// with Deleted=true and a terminal status, and normal completion ends in
// closed/paid-full. The lineage triple (OriginalRequestID, SplitSequence,
// IsSplitRequest) links split-group children to their retired parent;
// OriginalRequestID and SplitSequence are both nil or both set.
type PaymentRequest struct {
	ID                     string             `json:"id"`
	Number                 string             `json:"number"` // unique, human readable (REQ-000042)
	Title                  string             `json:"title"`
	CreatedByUserID        string             `json:"createdByUserID"`
	CounterpartyID         string             `json:"counterpartyID"`
	CurrencyCode           string             `json:"currencyCode"`
	AmountTotal            decimal.Decimal    `json:"amountTotal"`
	VatTotal               decimal.Decimal    `json:"vatTotal"`
	DueDate                time.Time          `json:"dueDate"`
	Status                 RequestStatus      `json:"status"`
	DistributionStatus     DistributionStatus `json:"distributionStatus"`
	ResponsibleRegistrarID *string            `json:"responsibleRegistrarID,omitempty"`
	ExpenseArticleText     *string            `json:"expenseArticleText,omitempty"`
	DocNumber              *string            `json:"docNumber,omitempty"`
	DocDate                *time.Time         `json:"docDate,omitempty"`
	DocType                *string            `json:"docType,omitempty"`
	Deleted                bool               `json:"deleted"`
	OriginalRequestID      *string            `json:"originalRequestID,omitempty"`
	SplitSequence          *int               `json:"splitSequence,omitempty"`
	IsSplitRequest         bool               `json:"isSplitRequest"`
	AuditFields
}

// PaymentRequestLine is a single line of a request. Lines are replaced
// wholesale when the request is edited in draft/rejected/returned state.
type PaymentRequestLine struct {
	ID           string          `json:"id"`
	RequestID    string          `json:"requestID"`
	ArticleID    *string         `json:"articleID,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	AmountNet    decimal.Decimal `json:"amountNet"`
	VatRateID    string          `json:"vatRateID"`
	CurrencyCode string          `json:"currencyCode"`
	Status       RequestStatus   `json:"status"` // mirrors the parent, not always synchronized
	Note         *string         `json:"note,omitempty"`
}
