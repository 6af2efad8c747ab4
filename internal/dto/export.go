package dto

import (
	"time"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExportContractRequest defines the data needed to register an export contract.
type CreateExportContractRequest struct {
	ContractNumber string           `json:"contractNumber" binding:"required"`
	ContractDate   time.Time        `json:"contractDate" binding:"required"`
	CounterpartyID *string          `json:"counterpartyID"`
	Amount         *decimal.Decimal `json:"amount"`
	CurrencyCode   *string          `json:"currencyCode"`
}

// LinkExportContractRequest links a distributor request to an export contract.
type LinkExportContractRequest struct {
	ExportContractID string `json:"exportContractID" binding:"required"`
}

// ExportContractResponse defines the data returned for an export contract.
type ExportContractResponse struct {
	ID             string           `json:"id"`
	ContractNumber string           `json:"contractNumber"`
	ContractDate   time.Time        `json:"contractDate"`
	CounterpartyID *string          `json:"counterpartyID,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	CurrencyCode   *string          `json:"currencyCode,omitempty"`
	IsActive       bool             `json:"isActive"`
}

// ExportLinkResponse defines the data returned for a distributor/export link.
type ExportLinkResponse struct {
	ID                   string    `json:"id"`
	DistributorRequestID string    `json:"distributorRequestID"`
	ExportContractID     string    `json:"exportContractID"`
	LinkedAt             time.Time `json:"linkedAt"`
	LinkedBy             string    `json:"linkedBy"`
}

// ToExportContractResponse converts a domain.ExportContract to its DTO.
func ToExportContractResponse(c *domain.ExportContract) ExportContractResponse {
	return ExportContractResponse{
		ID:             c.ID,
		ContractNumber: c.ContractNumber,
		ContractDate:   c.ContractDate,
		CounterpartyID: c.CounterpartyID,
		Amount:         c.Amount,
		CurrencyCode:   c.CurrencyCode,
		IsActive:       c.IsActive,
	}
}

// ToExportLinkResponse converts a domain.DistributorExportLink to its DTO.
func ToExportLinkResponse(l *domain.DistributorExportLink) ExportLinkResponse {
	return ExportLinkResponse{
		ID:                   l.ID,
		DistributorRequestID: l.DistributorRequestID,
		ExportContractID:     l.ExportContractID,
		LinkedAt:             l.LinkedAt,
		LinkedBy:             l.LinkedBy,
	}
}
