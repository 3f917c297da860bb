package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"motoprice/internal/model"
	"motoprice/internal/service"
)

// PricingHandler handles prediction and anomaly-check HTTP requests
type PricingHandler struct {
	pricingService *service.PricingService
	historyLimit   int
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *service.PricingService, historyLimit int) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		historyLimit:   historyLimit,
	}
}

// Predict handles POST /api/v1/predict
func (h *PricingHandler) Predict(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.pricingService.PredictAndSuggest(c.Request.Context(), &req.VehicleAttributes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckAnomaly handles POST /api/v1/anomaly
func (h *PricingHandler) CheckAnomaly(c *gin.Context) {
	var req model.AnomalyCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.pricingService.CheckAnomaly(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveCheck handles POST /api/v1/anomaly/history
func (h *PricingHandler) SaveCheck(c *gin.Context) {
	var req model.AnomalyCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	check, err := h.pricingService.SaveCheck(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.SaveAnomalyCheckResponse{Saved: true, Check: *check})
}

// History handles GET /api/v1/anomaly/history
func (h *PricingHandler) History(c *gin.Context) {
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit: " + raw})
			return
		}
		if n < limit {
			limit = n
		}
	}

	checks, err := h.pricingService.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checks": checks, "count": len(checks)})
}
