package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// articleHandler handles the expense-article dictionary routes.
type articleHandler struct {
	articleService portssvc.ArticleSvcFacade
}

// registerArticleRoutes registers expense-article routes.
func registerArticleRoutes(rg *gin.RouterGroup, articleService portssvc.ArticleSvcFacade) {
	h := &articleHandler{articleService: articleService}

	articles := rg.Group("/articles")
	{
		articles.POST("", h.createArticle)
		articles.GET("", h.listArticles)
	}
}

// createArticle registers a dictionary entry.
func (h *articleHandler) createArticle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateArticle", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	article, err := h.articleService.CreateArticle(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create article")
		return
	}
	c.JSON(http.StatusCreated, dto.ToArticleResponse(article))
}

// listArticles lists dictionary entries; ?active=true filters to active ones.
func (h *articleHandler) listArticles(c *gin.Context) {
	articles, err := h.articleService.ListArticles(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err, "Failed to list articles")
		return
	}
	c.JSON(http.StatusOK, dto.ToArticleResponses(articles))
}
