package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubRegistrarAssignment hands a request to a sub-registrar for document
// verification. Exactly one per request, enforced by a unique constraint on
// RequestID; a concurrent duplicate dispatch surfaces as a conflict.
type SubRegistrarAssignment struct {
	ID             string           `json:"id"`
	RequestID      string           `json:"requestID"`
	SubRegistrarID string           `json:"subRegistrarID"`
	Status         AssignmentStatus `json:"status"`
	AssignedAt     time.Time        `json:"assignedAt"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// DistributorRequest is the per-article work item handed to a distributor for
// contract linkage. The dispatcher creates one per expense split.
type DistributorRequest struct {
	ID                string                   `json:"id"`
	OriginalRequestID string                   `json:"originalRequestID"`
	ExpenseArticleID  string                   `json:"expenseArticleID"`
	Amount            decimal.Decimal          `json:"amount"`
	DistributorID     string                   `json:"distributorID"`
	Status            DistributorRequestStatus `json:"status"`
	CreatedAt         time.Time                `json:"createdAt"`
}

// SubRegistrarReport records document verification results for a request.
type SubRegistrarReport struct {
	ID             string         `json:"id"`
	RequestID      string         `json:"requestID"`
	SubRegistrarID string         `json:"subRegistrarID"`
	DocumentStatus DocumentStatus `json:"documentStatus"`
	ReportData     *string        `json:"reportData,omitempty"` // free-form JSON payload
	Status         ReportStatus   `json:"status"`
	PublishedAt    *time.Time     `json:"publishedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// ExportContract is an export contract a distributor may link a request to.
type ExportContract struct {
	ID             string           `json:"id"`
	ContractNumber string           `json:"contractNumber"`
	ContractDate   time.Time        `json:"contractDate"`
	CounterpartyID *string          `json:"counterpartyID,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	CurrencyCode   *string          `json:"currencyCode,omitempty"`
	IsActive       bool             `json:"isActive"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// DistributorExportLink ties a distributor request to an export contract.
type DistributorExportLink struct {
	ID                   string    `json:"id"`
	DistributorRequestID string    `json:"distributorRequestID"`
	ExportContractID     string    `json:"exportContractID"`
	LinkedAt             time.Time `json:"linkedAt"`
	LinkedBy             string    `json:"linkedBy"`
}
