package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// subRegistrarHandler handles the sub-registrar's document verification routes.
type subRegistrarHandler struct {
	subRegistrarService portssvc.SubRegistrarSvcFacade
}

// newSubRegistrarHandler creates a new subRegistrarHandler.
func newSubRegistrarHandler(ss portssvc.SubRegistrarSvcFacade) *subRegistrarHandler {
	return &subRegistrarHandler{subRegistrarService: ss}
}

// registerSubRegistrarRoutes registers the sub-registrar routes.
func registerSubRegistrarRoutes(rg *gin.RouterGroup, subRegistrarService portssvc.SubRegistrarSvcFacade) {
	h := newSubRegistrarHandler(subRegistrarService)

	sr := rg.Group("/sub-registrar")
	{
		sr.GET("/assignments", h.listAssignments)
		sr.POST("/reports", h.saveDraftReport)
		sr.GET("/reports/:requestID", h.getReport)
		sr.POST("/reports/:requestID/publish", h.publishReport)
	}
}

// listAssignments lists the caller's assignments.
func (h *subRegistrarHandler) listAssignments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	assignments, err := h.subRegistrarService.ListAssignments(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list assignments")
		return
	}
	c.JSON(http.StatusOK, dto.ToAssignmentPayloads(assignments))
}

// saveDraftReport creates or overwrites the caller's draft report.
func (h *subRegistrarHandler) saveDraftReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SaveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveReport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.subRegistrarService.SaveDraftReport(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to save report")
		return
	}
	c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

// getReport returns the report for a request.
func (h *subRegistrarHandler) getReport(c *gin.Context) {
	report, err := h.subRegistrarService.GetReport(c.Request.Context(), c.Param("requestID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve report")
		return
	}
	c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

// publishReport publishes the draft report and advances the request.
func (h *subRegistrarHandler) publishReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.subRegistrarService.PublishReport(c.Request.Context(), c.Param("requestID"), userID)
	if err != nil {
		respondError(c, err, "Failed to publish report")
		return
	}
	c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

// pagination reads limit/offset query params with safe defaults.
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
