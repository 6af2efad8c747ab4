package services

import (
	"context"
	"fmt"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// splitValidator checks a proposed expense-split decomposition before any
// mutation begins. Checks run in a fixed order: article existence, then the
// sum-vs-total match, then (for split-by-article only) the minimum of two
// distinct articles. No partial writes can occur because the validator runs
// entirely up front.
type splitValidator struct {
	articleSvc portssvc.ArticleSvcFacade
}

func newSplitValidator(articleSvc portssvc.ArticleSvcFacade) *splitValidator {
	return &splitValidator{articleSvc: articleSvc}
}

// Validate checks the split list against total. For split-by-article the
// caller passes the parent's total: brand-new split-group members are checked
// against the parent, not the child.
func (v *splitValidator) Validate(ctx context.Context, total decimal.Decimal, splits []dto.ExpenseSplitInput, forSplit bool) error {
	if len(splits) == 0 {
		return fmt.Errorf("%w: expenseSplits must not be empty", apperrors.ErrValidation)
	}

	ids := make([]string, 0, len(splits))
	for _, s := range splits {
		if s.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: split amount for article %s must be positive, got %s",
				apperrors.ErrValidation, s.ExpenseArticleID, s.Amount)
		}
		ids = append(ids, s.ExpenseArticleID)
	}

	missing, err := v.articleSvc.MissingArticles(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to verify expense articles: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: expense article %s not found", apperrors.ErrValidation, missing[0])
	}

	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(domain.SumTolerance) {
		return fmt.Errorf("%w: split total %s must equal request total %s",
			apperrors.ErrValidation, sum, total)
	}

	if forSplit {
		distinct := make(map[string]struct{}, len(splits))
		for _, s := range splits {
			distinct[s.ExpenseArticleID] = struct{}{}
		}
		if len(distinct) < 2 {
			return fmt.Errorf("%w: split-by-article requires at least two distinct expense articles",
				apperrors.ErrValidation)
		}
	}

	return nil
}

// toDomainSplits materializes validated input lines as persistable splits for
// the given request.
func toDomainSplits(requestID string, splits []dto.ExpenseSplitInput, newID func() string) []domain.ExpenseSplit {
	out := make([]domain.ExpenseSplit, len(splits))
	for i, s := range splits {
		out[i] = domain.ExpenseSplit{
			ID:               newID(),
			RequestID:        requestID,
			ExpenseArticleID: s.ExpenseArticleID,
			Amount:           s.Amount,
			Comment:          s.Comment,
			ContractID:       s.ContractID,
			Priority:         s.Priority,
		}
	}
	return out
}
