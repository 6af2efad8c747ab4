package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseSplit is one slice of a request's total amount assigned to an
// expense article by the registrar. A request has exactly one generation of
// splits: re-classification deletes and recreates the whole set.
type ExpenseSplit struct {
	ID               string          `json:"id"`
	RequestID        string          `json:"requestID"`
	ExpenseArticleID string          `json:"expenseArticleID"`
	Amount           decimal.Decimal `json:"amount"`
	Comment          *string         `json:"comment,omitempty"`
	ContractID       *string         `json:"contractID,omitempty"`
	Priority         *string         `json:"priority,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SplitLine is a proposed decomposition line before persistence, as supplied
// by the registrar during classification, dispatch or split-by-article.
type SplitLine struct {
	ExpenseArticleID string
	Amount           decimal.Decimal
	Comment          *string
	ContractID       *string
	Priority         *string
}

// SumTolerance is the maximum allowed absolute difference between the sum of
// split amounts and the request total.
var SumTolerance = decimal.RequireFromString("0.01")
