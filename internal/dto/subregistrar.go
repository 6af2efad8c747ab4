package dto

import (
	"time"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// SaveReportRequest saves or updates a sub-registrar document report as draft.
type SaveReportRequest struct {
	RequestID      string  `json:"requestID" binding:"required"`
	DocumentStatus string  `json:"documentStatus" binding:"required,oneof=required uploaded verified rejected"`
	ReportData     *string `json:"reportData"`
}

// ReportResponse defines the data returned for a sub-registrar report.
type ReportResponse struct {
	ID             string     `json:"id"`
	RequestID      string     `json:"requestID"`
	SubRegistrarID string     `json:"subRegistrarID"`
	DocumentStatus string     `json:"documentStatus"`
	ReportData     *string    `json:"reportData,omitempty"`
	Status         string     `json:"status"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ToReportResponse converts a domain.SubRegistrarReport to its DTO.
func ToReportResponse(r *domain.SubRegistrarReport) ReportResponse {
	return ReportResponse{
		ID:             r.ID,
		RequestID:      r.RequestID,
		SubRegistrarID: r.SubRegistrarID,
		DocumentStatus: string(r.DocumentStatus),
		ReportData:     r.ReportData,
		Status:         string(r.Status),
		PublishedAt:    r.PublishedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// ToAssignmentPayloads converts assignments to DTOs.
func ToAssignmentPayloads(assignments []domain.SubRegistrarAssignment) []SubRegistrarAssignmentPayload {
	responses := make([]SubRegistrarAssignmentPayload, len(assignments))
	for i := range assignments {
		responses[i] = ToAssignmentPayload(&assignments[i])
	}
	return responses
}
