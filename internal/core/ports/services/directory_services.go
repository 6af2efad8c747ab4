package services

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// UserSvcFacade is the thin user/role directory collaborator.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsersByRole(ctx context.Context, role domain.RoleCode) ([]domain.User, error)
	// RequireRole resolves the user and fails with apperrors.ErrForbidden when
	// the role is missing.
	RequireRole(ctx context.Context, userID string, role domain.RoleCode) (*domain.User, error)
}

// ArticleSvcFacade is the expense-article dictionary collaborator.
type ArticleSvcFacade interface {
	CreateArticle(ctx context.Context, req dto.CreateArticleRequest, creatorUserID string) (*domain.ExpenseArticle, error)
	ListArticles(ctx context.Context, onlyActive bool) ([]domain.ExpenseArticle, error)
	// MissingArticles returns the ids among the given set that do not resolve
	// to active articles.
	MissingArticles(ctx context.Context, ids []string) ([]string, error)
}
