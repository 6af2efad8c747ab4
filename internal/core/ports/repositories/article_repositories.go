package repositories

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// ArticleRepository is the expense-article dictionary.
type ArticleRepository interface {
	SaveArticle(ctx context.Context, article domain.ExpenseArticle) error
	FindArticleByID(ctx context.Context, articleID string) (*domain.ExpenseArticle, error)
	ListArticles(ctx context.Context, onlyActive bool) ([]domain.ExpenseArticle, error)
	// MissingArticles returns the subset of ids that do not exist as active articles.
	MissingArticles(ctx context.Context, ids []string) ([]string, error)
}
