package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// distributionHandler handles classification, dispatch and split-by-article.
type distributionHandler struct {
	distributionService portssvc.DistributionSvcFacade
	splitterService     portssvc.SplitterSvcFacade
}

// newDistributionHandler creates a new distributionHandler.
func newDistributionHandler(ds portssvc.DistributionSvcFacade, ss portssvc.SplitterSvcFacade) *distributionHandler {
	return &distributionHandler{
		distributionService: ds,
		splitterService:     ss,
	}
}

// registerDistributionRoutes registers the registrar workflow routes.
func registerDistributionRoutes(rg *gin.RouterGroup, distributionService portssvc.DistributionSvcFacade, splitterService portssvc.SplitterSvcFacade) {
	h := newDistributionHandler(distributionService, splitterService)

	distribution := rg.Group("/distribution")
	{
		distribution.POST("/classify", h.classify)
		distribution.POST("/dispatch", h.dispatch)
		distribution.POST("/split", h.split)
	}
	rg.GET("/requests/:id/splits", h.getSplits)
}

// classify records the registrar's split set for a request.
func (h *distributionHandler) classify(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Classify", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	splits, err := h.distributionService.Classify(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to classify request")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseSplitResponses(splits))
}

// dispatch fans a request out to a sub-registrar and a distributor.
func (h *distributionHandler) dispatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Dispatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.distributionService.Dispatch(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to dispatch request")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// split divides one request into per-article child requests.
func (h *distributionHandler) split(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Split", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.splitterService.Split(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to split request")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getSplits returns the current split generation of a request.
func (h *distributionHandler) getSplits(c *gin.Context) {
	splits, err := h.distributionService.GetSplits(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve splits")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseSplitResponses(splits))
}
