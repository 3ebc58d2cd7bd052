package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/macrolens/nutrilog/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysisService *usecase.AnalysisService
}

// NewHandler creates a new HTTP handler. A nil service makes the API routes
// answer 501 so the router can still be exercised without a reference table.
func NewHandler(analysisService *usecase.AnalysisService) *Handler {
	return &Handler{
		analysisService: analysisService,
	}
}

// resolveRequest is the body of POST /api/v1/foods/resolve
type resolveRequest struct {
	Name string `json:"name" binding:"required"`
}

// HealthCheck returns the health status of the API and the loaded reference table
func (h *Handler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": "nutrilog",
		"version": "1.0.0",
	}

	if h.analysisService != nil {
		if status, err := h.analysisService.Status(); err == nil {
			response["reference"] = status
		} else {
			response["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, response)
}

// AnalyzeMeals handles meal text analysis requests
func (h *Handler) AnalyzeMeals(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	analysis, err := h.analysisService.Analyze(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ResolveFood resolves a single food name to a reference food
func (h *Handler) ResolveFood(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	result, err := h.analysisService.ResolveFood(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReloadReference reloads the reference table from its source
func (h *Handler) ReloadReference(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	status, err := h.analysisService.Reload(c.Request.Context())
	if err != nil {
		log.Printf("[CATALOG] Reload request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reference reload failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) requireService(c *gin.Context) bool {
	if h.analysisService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Analysis service not configured",
		})
		return false
	}
	return true
}

// writeError maps service errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[ANALYZE] Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": message})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrFoodNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrCatalogNotLoaded):
		return http.StatusServiceUnavailable, "Reference table not loaded"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
