package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// exportHandler handles export contracts and distributor linkage routes.
type exportHandler struct {
	exportService portssvc.ExportSvcFacade
}

// newExportHandler creates a new exportHandler.
func newExportHandler(es portssvc.ExportSvcFacade) *exportHandler {
	return &exportHandler{exportService: es}
}

// registerExportRoutes registers export-contract and distributor routes.
func registerExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvcFacade) {
	h := newExportHandler(exportService)

	contracts := rg.Group("/export-contracts")
	{
		contracts.POST("", h.createContract)
		contracts.GET("", h.listContracts)
	}
	distributor := rg.Group("/distributor")
	{
		distributor.GET("/requests", h.listDistributorRequests)
		distributor.POST("/requests/:id/link", h.linkContract)
	}
}

// createContract registers a new export contract.
func (h *exportHandler) createContract(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExportContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExportContract", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	contract, err := h.exportService.CreateContract(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create export contract")
		return
	}
	c.JSON(http.StatusCreated, dto.ToExportContractResponse(contract))
}

// listContracts lists export contracts; ?active=true filters to active ones.
func (h *exportHandler) listContracts(c *gin.Context) {
	limit, offset := pagination(c)
	contracts, err := h.exportService.ListContracts(c.Request.Context(), c.Query("active") == "true", limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list export contracts")
		return
	}
	responses := make([]dto.ExportContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = dto.ToExportContractResponse(&contracts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// listDistributorRequests lists the caller's per-article work items.
func (h *exportHandler) listDistributorRequests(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	requests, err := h.exportService.ListDistributorRequests(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list distributor requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToDistributorRequestResponses(requests))
}

// linkContract ties a distributor request to an export contract.
func (h *exportHandler) linkContract(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LinkExportContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LinkExportContract", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	link, err := h.exportService.LinkContract(c.Request.Context(), c.Param("id"), req.ExportContractID, userID)
	if err != nil {
		respondError(c, err, "Failed to link export contract")
		return
	}
	c.JSON(http.StatusOK, dto.ToExportLinkResponse(link))
}
