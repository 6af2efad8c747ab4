package dto

import "github.com/shopspring/decimal"

// SplitRequest asks to divide one request into independent child requests,
// one per expense article. At least two splits are required; a single-piece
// split is a no-op and rejected.
type SplitRequest struct {
	OriginalRequestID string              `json:"originalRequestID" binding:"required"`
	ExpenseSplits     []ExpenseSplitInput `json:"expenseSplits" binding:"required,min=2,dive"`
	SubRegistrarID    string              `json:"subRegistrarID" binding:"required"`
	DistributorID     string              `json:"distributorID" binding:"required"`
	Comment           *string             `json:"comment"`
}

// SplitResponse summarizes a completed split-by-article.
type SplitResponse struct {
	OriginalRequestID string            `json:"originalRequestID"`
	SplitRequests     []RequestResponse `json:"splitRequests"`
	TotalAmount       decimal.Decimal   `json:"totalAmount"`
	Status            string            `json:"status"`
}
