package dto

import (
	"time"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRequestLine defines one line of a new payment request.
type CreateRequestLine struct {
	ArticleID    *string         `json:"articleID"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	AmountNet    decimal.Decimal `json:"amountNet" binding:"required"`
	VatRateID    string          `json:"vatRateID" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required"`
	Note         *string         `json:"note"`
}

// CreateRequest defines the data needed to create a payment request.
type CreateRequest struct {
	Title              string              `json:"title" binding:"required"`
	CounterpartyID     string              `json:"counterpartyID" binding:"required"`
	CurrencyCode       string              `json:"currencyCode" binding:"required"`
	DueDate            time.Time           `json:"dueDate" binding:"required"`
	VatTotal           decimal.Decimal     `json:"vatTotal"`
	ExpenseArticleText *string             `json:"expenseArticleText"`
	DocNumber          *string             `json:"docNumber"`
	DocDate            *time.Time          `json:"docDate"`
	DocType            *string             `json:"docType"`
	Lines              []CreateRequestLine `json:"lines" binding:"required,min=1,dive"`
}

// UpdateRequest defines the data allowed when editing a request. Lines, when
// present, replace the existing set wholesale.
type UpdateRequest struct {
	Title              *string             `json:"title"`
	CounterpartyID     *string             `json:"counterpartyID"`
	CurrencyCode       *string             `json:"currencyCode"`
	DueDate            *time.Time          `json:"dueDate"`
	ExpenseArticleText *string             `json:"expenseArticleText"`
	DocNumber          *string             `json:"docNumber"`
	DocDate            *time.Time          `json:"docDate"`
	DocType            *string             `json:"docType"`
	Lines              []CreateRequestLine `json:"lines" binding:"omitempty,min=1,dive"`
}

// ActionRequest carries the optional comment most transitions accept.
type ActionRequest struct {
	Comment *string `json:"comment"`
}

// DistributorActionRequest selects one of the closed set of distributor actions.
type DistributorActionRequest struct {
	Action  string  `json:"action" binding:"required,oneof=approve decline return"`
	Comment *string `json:"comment"`
}

// RequestLineResponse defines the data returned for a request line.
type RequestLineResponse struct {
	ID           string          `json:"id"`
	ArticleID    *string         `json:"articleID,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	AmountNet    decimal.Decimal `json:"amountNet"`
	VatRateID    string          `json:"vatRateID"`
	CurrencyCode string          `json:"currencyCode"`
	Status       string          `json:"status"`
	Note         *string         `json:"note,omitempty"`
}

// RequestResponse defines the data returned for a payment request.
type RequestResponse struct {
	ID                     string                `json:"id"`
	Number                 string                `json:"number"`
	Title                  string                `json:"title"`
	Status                 string                `json:"status"`
	DistributionStatus     string                `json:"distributionStatus"`
	CreatedByUserID        string                `json:"createdByUserID"`
	CounterpartyID         string                `json:"counterpartyID"`
	CurrencyCode           string                `json:"currencyCode"`
	AmountTotal            decimal.Decimal       `json:"amountTotal"`
	VatTotal               decimal.Decimal       `json:"vatTotal"`
	DueDate                time.Time             `json:"dueDate"`
	ResponsibleRegistrarID *string               `json:"responsibleRegistrarID,omitempty"`
	Deleted                bool                  `json:"deleted"`
	OriginalRequestID      *string               `json:"originalRequestID,omitempty"`
	SplitSequence          *int                  `json:"splitSequence,omitempty"`
	IsSplitRequest         bool                  `json:"isSplitRequest"`
	Lines                  []RequestLineResponse `json:"lines,omitempty"`
	CreatedAt              time.Time             `json:"createdAt"`
	LastUpdatedAt          time.Time             `json:"lastUpdatedAt"`
}

// RequestEventResponse defines one entry of the request event feed.
type RequestEventResponse struct {
	ID          string    `json:"id"`
	EventType   string    `json:"eventType"`
	ActorUserID string    `json:"actorUserID"`
	Payload     string    `json:"payload"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToRequestResponse converts a domain.PaymentRequest to RequestResponse DTO.
func ToRequestResponse(req *domain.PaymentRequest, lines []domain.PaymentRequestLine) RequestResponse {
	resp := RequestResponse{
		ID:                     req.ID,
		Number:                 req.Number,
		Title:                  req.Title,
		Status:                 string(req.Status),
		DistributionStatus:     string(req.DistributionStatus),
		CreatedByUserID:        req.CreatedByUserID,
		CounterpartyID:         req.CounterpartyID,
		CurrencyCode:           req.CurrencyCode,
		AmountTotal:            req.AmountTotal,
		VatTotal:               req.VatTotal,
		DueDate:                req.DueDate,
		ResponsibleRegistrarID: req.ResponsibleRegistrarID,
		Deleted:                req.Deleted,
		OriginalRequestID:      req.OriginalRequestID,
		SplitSequence:          req.SplitSequence,
		IsSplitRequest:         req.IsSplitRequest,
		CreatedAt:              req.CreatedAt,
		LastUpdatedAt:          req.LastUpdatedAt,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, RequestLineResponse{
			ID:           l.ID,
			ArticleID:    l.ArticleID,
			Quantity:     l.Quantity,
			AmountNet:    l.AmountNet,
			VatRateID:    l.VatRateID,
			CurrencyCode: l.CurrencyCode,
			Status:       string(l.Status),
			Note:         l.Note,
		})
	}
	return resp
}

// ToRequestEventResponses converts a slice of domain.RequestEvent to DTOs.
func ToRequestEventResponses(events []domain.RequestEvent) []RequestEventResponse {
	responses := make([]RequestEventResponse, len(events))
	for i, e := range events {
		responses[i] = RequestEventResponse{
			ID:          e.ID,
			EventType:   e.EventType,
			ActorUserID: e.ActorUserID,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
		}
	}
	return responses
}
