package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// registryHandler exposes the treasury registry views.
type registryHandler struct {
	requestService portssvc.RequestSvcFacade
}

// registerRegistryRoutes registers the registry views.
func registerRegistryRoutes(rg *gin.RouterGroup, requestService portssvc.RequestSvcFacade) {
	h := &registryHandler{requestService: requestService}

	registry := rg.Group("/registry")
	{
		registry.GET("", h.listRegistry)
		registry.GET("/statistics", h.statistics)
	}
}

// listRegistry lists requests currently in the treasury registry.
func (h *registryHandler) listRegistry(c *gin.Context) {
	entries, err := h.requestService.ListRegistry(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list registry")
		return
	}
	responses := make([]dto.RequestResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToRequestResponse(&entries[i], nil)
	}
	c.JSON(http.StatusOK, responses)
}

// statistics summarizes the registry by amount and due date.
func (h *registryHandler) statistics(c *gin.Context) {
	stats, err := h.requestService.RegistryStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute registry statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
