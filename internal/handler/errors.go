package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"motoprice/internal/pricing"
	"motoprice/internal/repository"
	"motoprice/internal/service"
)

// writeError maps domain errors to HTTP statuses. Anything unmapped is a 500.
func writeError(c *gin.Context, err error) {
	var predErr *pricing.PredictionError

	switch {
	case errors.Is(err, pricing.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Listing changed, reload and retry"})
	case errors.Is(err, service.ErrTerminalState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoEncoder):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, pricing.ErrZeroPrediction):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &predErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Prediction failed: " + predErr.Err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
