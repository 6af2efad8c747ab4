package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// requestHandler handles HTTP requests for the payment-request lifecycle.
type requestHandler struct {
	requestService portssvc.RequestSvcFacade
}

// newRequestHandler creates a new requestHandler.
func newRequestHandler(rs portssvc.RequestSvcFacade) *requestHandler {
	return &requestHandler{requestService: rs}
}

// registerRequestRoutes registers routes for the request lifecycle.
func registerRequestRoutes(rg *gin.RouterGroup, requestService portssvc.RequestSvcFacade) {
	h := newRequestHandler(requestService)

	requests := rg.Group("/requests")
	{
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)
		requests.GET("/:id", h.getRequest)
		requests.PUT("/:id", h.updateRequest)
		requests.GET("/:id/events", h.listEvents)
		requests.GET("/:id/children", h.listChildren)

		requests.POST("/:id/submit", h.action(func(c *gin.Context, userID string, _ dto.ActionRequest) (*domain.PaymentRequest, error) {
			return h.requestService.SubmitRequest(c.Request.Context(), c.Param("id"), userID)
		}))
		requests.POST("/:id/approve", h.action(func(c *gin.Context, userID string, req dto.ActionRequest) (*domain.PaymentRequest, error) {
			return h.requestService.ApproveRequest(c.Request.Context(), c.Param("id"), userID, req.Comment)
		}))
		requests.POST("/:id/reject", h.action(func(c *gin.Context, userID string, req dto.ActionRequest) (*domain.PaymentRequest, error) {
			return h.requestService.RejectRequest(c.Request.Context(), c.Param("id"), userID, req.Comment)
		}))
		requests.POST("/:id/return", h.action(func(c *gin.Context, userID string, req dto.ActionRequest) (*domain.PaymentRequest, error) {
			return h.requestService.ReturnRequest(c.Request.Context(), c.Param("id"), userID, req.Comment)
		}))
		requests.POST("/:id/add-to-registry", h.action(func(c *gin.Context, userID string, _ dto.ActionRequest) (*domain.PaymentRequest, error) {
			return h.requestService.AddToRegistry(c.Request.Context(), c.Param("id"), userID)
		}))
		requests.POST("/:id/distributor-action", h.distributorAction)
	}
}

// createRequest creates a new draft payment request.
func (h *requestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	created, lines, err := h.requestService.CreateRequest(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRequestResponse(created, lines))
}

// updateRequest edits a request in draft, rejected or returned state.
func (h *requestHandler) updateRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	updated, lines, err := h.requestService.UpdateRequest(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated, lines))
}

// getRequest returns a request with its lines.
func (h *requestHandler) getRequest(c *gin.Context) {
	request, lines, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(request, lines))
}

// listRequests lists requests, filterable by status, creator and registrar.
func (h *requestHandler) listRequests(c *gin.Context) {
	requests, err := h.requestService.ListRequests(c.Request.Context(),
		domain.RequestStatus(c.Query("status")), c.Query("createdBy"), c.Query("responsibleRegistrar"))
	if err != nil {
		respondError(c, err, "Failed to list requests")
		return
	}
	responses := make([]dto.RequestResponse, len(requests))
	for i := range requests {
		responses[i] = dto.ToRequestResponse(&requests[i], nil)
	}
	c.JSON(http.StatusOK, responses)
}

// listEvents returns the append-only event feed of a request.
func (h *requestHandler) listEvents(c *gin.Context) {
	events, err := h.requestService.ListEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestEventResponses(events))
}

// listChildren returns the split-group children of a parent request.
func (h *requestHandler) listChildren(c *gin.Context) {
	children, err := h.requestService.ListSplitChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list split children")
		return
	}
	responses := make([]dto.RequestResponse, len(children))
	for i := range children {
		responses[i] = dto.ToRequestResponse(&children[i], nil)
	}
	c.JSON(http.StatusOK, responses)
}

// action adapts a transition call into a handler with the shared
// bind/auth/error plumbing. The body is optional for comment-less actions.
func (h *requestHandler) action(fn func(c *gin.Context, userID string, req dto.ActionRequest) (*domain.PaymentRequest, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ActionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
				return
			}
		}
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		updated, err := fn(c, userID, req)
		if err != nil {
			respondError(c, err, "Failed to apply transition")
			return
		}
		c.JSON(http.StatusOK, dto.ToRequestResponse(updated, nil))
	}
}

// distributorAction applies one of approve/decline/return as the distributor.
func (h *requestHandler) distributorAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DistributorActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for DistributorAction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	updated, err := h.requestService.DistributorAction(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err, "Failed to apply distributor action")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated, nil))
}
