package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"motoprice/internal/model"
	"motoprice/internal/service"
)

// ModerationHandler handles listing intake and reviewer actions
type ModerationHandler struct {
	moderationService *service.ModerationService
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Submit handles POST /api/v1/listings
func (h *ModerationHandler) Submit(c *gin.Context) {
	var req model.SubmitListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.moderationService.Submit(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// Moderate handles POST /api/v1/listings/:id/moderate
func (h *ModerationHandler) Moderate(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req model.ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.moderationService.Moderate(c.Request.Context(), id, req.Action, req.Version)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := model.ModerationResponse{Listing: *listing}
	if req.Action == model.ActionReject {
		resp.Message = "listing removed from the working set; the submission log keeps its history"
	}
	c.JSON(http.StatusOK, resp)
}
