package dto

import "github.com/gc-spends/payflow_backend/internal/core/domain"

// CreateArticleRequest defines the data needed to create an expense article.
type CreateArticleRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ArticleResponse defines the data returned for an expense article.
type ArticleResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// ToArticleResponse converts a domain.ExpenseArticle to its DTO.
func ToArticleResponse(a *domain.ExpenseArticle) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		IsActive:    a.IsActive,
	}
}

// ToArticleResponses converts a slice of domain.ExpenseArticle to DTOs.
func ToArticleResponses(articles []domain.ExpenseArticle) []ArticleResponse {
	responses := make([]ArticleResponse, len(articles))
	for i := range articles {
		responses[i] = ToArticleResponse(&articles[i])
	}
	return responses
}
