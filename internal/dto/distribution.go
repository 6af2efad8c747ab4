package dto

import (
	"time"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseSplitInput is one proposed slice of a request's total.
type ExpenseSplitInput struct {
	ExpenseArticleID string          `json:"expenseArticleID" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Comment          *string         `json:"comment"`
	ContractID       *string         `json:"contractID"`
	Priority         *string         `json:"priority"`
}

// ClassifyRequest carries a registrar classification: the split set for one request.
type ClassifyRequest struct {
	RequestID     string              `json:"requestID" binding:"required"`
	ExpenseSplits []ExpenseSplitInput `json:"expenseSplits" binding:"required,min=1,dive"`
	Comment       *string             `json:"comment"`
}

// DispatchRequest fans a classified request out to one sub-registrar and one
// distributor across the given split set.
type DispatchRequest struct {
	RequestID      string              `json:"requestID" binding:"required"`
	SubRegistrarID string              `json:"subRegistrarID" binding:"required"`
	DistributorID  string              `json:"distributorID" binding:"required"`
	ExpenseSplits  []ExpenseSplitInput `json:"expenseSplits" binding:"required,min=1,dive"`
	Comment        *string             `json:"comment"`
}

// ExpenseSplitResponse defines the data returned for a persisted split.
type ExpenseSplitResponse struct {
	ID               string          `json:"id"`
	RequestID        string          `json:"requestID"`
	ExpenseArticleID string          `json:"expenseArticleID"`
	Amount           decimal.Decimal `json:"amount"`
	Comment          *string         `json:"comment,omitempty"`
	ContractID       *string         `json:"contractID,omitempty"`
	Priority         *string         `json:"priority,omitempty"`
}

// DispatchResponse summarizes a completed dispatch.
type DispatchResponse struct {
	RequestID           string                        `json:"requestID"`
	SubRegistrarID      string                        `json:"subRegistrarID"`
	DistributorID       string                        `json:"distributorID"`
	TotalAmount         decimal.Decimal               `json:"totalAmount"`
	ExpenseSplits       []ExpenseSplitResponse        `json:"expenseSplits"`
	DistributorRequests []DistributorRequestResponse  `json:"distributorRequests"`
	Assignment          SubRegistrarAssignmentPayload `json:"assignment"`
}

// SubRegistrarAssignmentPayload defines the data returned for an assignment.
type SubRegistrarAssignmentPayload struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"requestID"`
	SubRegistrarID string    `json:"subRegistrarID"`
	Status         string    `json:"status"`
	AssignedAt     time.Time `json:"assignedAt"`
}

// DistributorRequestResponse defines the data returned for a distributor request.
type DistributorRequestResponse struct {
	ID                string          `json:"id"`
	OriginalRequestID string          `json:"originalRequestID"`
	ExpenseArticleID  string          `json:"expenseArticleID"`
	Amount            decimal.Decimal `json:"amount"`
	DistributorID     string          `json:"distributorID"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToExpenseSplitResponses converts persisted splits to DTOs.
func ToExpenseSplitResponses(splits []domain.ExpenseSplit) []ExpenseSplitResponse {
	responses := make([]ExpenseSplitResponse, len(splits))
	for i, s := range splits {
		responses[i] = ExpenseSplitResponse{
			ID:               s.ID,
			RequestID:        s.RequestID,
			ExpenseArticleID: s.ExpenseArticleID,
			Amount:           s.Amount,
			Comment:          s.Comment,
			ContractID:       s.ContractID,
			Priority:         s.Priority,
		}
	}
	return responses
}

// ToDistributorRequestResponses converts distributor requests to DTOs.
func ToDistributorRequestResponses(reqs []domain.DistributorRequest) []DistributorRequestResponse {
	responses := make([]DistributorRequestResponse, len(reqs))
	for i, r := range reqs {
		responses[i] = DistributorRequestResponse{
			ID:                r.ID,
			OriginalRequestID: r.OriginalRequestID,
			ExpenseArticleID:  r.ExpenseArticleID,
			Amount:            r.Amount,
			DistributorID:     r.DistributorID,
			Status:            string(r.Status),
			CreatedAt:         r.CreatedAt,
		}
	}
	return responses
}

// ToAssignmentPayload converts an assignment to its DTO.
func ToAssignmentPayload(a *domain.SubRegistrarAssignment) SubRegistrarAssignmentPayload {
	return SubRegistrarAssignmentPayload{
		ID:             a.ID,
		RequestID:      a.RequestID,
		SubRegistrarID: a.SubRegistrarID,
		Status:         string(a.Status),
		AssignedAt:     a.AssignedAt,
	}
}
