package dto

import "github.com/shopspring/decimal"

// RegistryStatistics summarizes the treasury registry.
type RegistryStatistics struct {
	TotalEntries  int             `json:"totalEntries"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	OverdueCount  int             `json:"overdueCount"`
	DueTodayCount int             `json:"dueTodayCount"`
}
