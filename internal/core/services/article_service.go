package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// articleService is the expense-article dictionary.
type articleService struct {
	articleRepo portsrepo.ArticleRepository
}

// NewArticleService creates a new ArticleService.
func NewArticleService(articleRepo portsrepo.ArticleRepository) portssvc.ArticleSvcFacade {
	return &articleService{articleRepo: articleRepo}
}

var _ portssvc.ArticleSvcFacade = (*articleService)(nil)

// CreateArticle registers a new active expense article.
func (s *articleService) CreateArticle(ctx context.Context, req dto.CreateArticleRequest, creatorUserID string) (*domain.ExpenseArticle, error) {
	now := time.Now()
	article := domain.ExpenseArticle{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.articleRepo.SaveArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to save article %s: %w", req.Code, err)
	}
	return &article, nil
}

// ListArticles lists articles, optionally active-only.
func (s *articleService) ListArticles(ctx context.Context, onlyActive bool) ([]domain.ExpenseArticle, error) {
	return s.articleRepo.ListArticles(ctx, onlyActive)
}

// MissingArticles returns the ids among the given set that do not resolve to
// active articles.
func (s *articleService) MissingArticles(ctx context.Context, ids []string) ([]string, error) {
	return s.articleRepo.MissingArticles(ctx, ids)
}
