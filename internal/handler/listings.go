package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"motoprice/internal/model"
	"motoprice/internal/service"
)

// ListingHandler handles working-set query HTTP requests
type ListingHandler struct {
	listingService *service.ListingService
	defaultLimit   int
	maxLimit       int
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *service.ListingService, defaultLimit, maxLimit int) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		defaultLimit:   defaultLimit,
		maxLimit:       maxLimit,
	}
}

// Search handles GET /api/v1/listings
func (h *ListingHandler) Search(c *gin.Context) {
	var filters model.ListingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}
	if filters.Status != nil && !model.Status(*filters.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + strconv.Itoa(*filters.Status)})
		return
	}

	limit, offset, ok := h.pagination(c)
	if !ok {
		return
	}

	resp, err := h.listingService.Search(c.Request.Context(), &filters, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Similar handles GET /api/v1/listings/:id/similar
func (h *ListingHandler) Similar(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit: " + raw})
			return
		}
		if n < h.maxLimit {
			limit = n
		} else {
			limit = h.maxLimit
		}
	}

	resp, err := h.listingService.Similar(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Submissions handles GET /api/v1/submissions
func (h *ListingHandler) Submissions(c *gin.Context) {
	limit, _, ok := h.pagination(c)
	if !ok {
		return
	}

	records, err := h.listingService.Submissions(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": records, "count": len(records)})
}

// MarketStats handles GET /api/v1/market/stats
func (h *ListingHandler) MarketStats(c *gin.Context) {
	brand := c.Query("brand")
	modelLine := c.Query("model_line")
	if brand == "" || modelLine == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand and model_line are required"})
		return
	}

	var year *int
	if raw := c.Query("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year: " + raw})
			return
		}
		year = &n
	}

	stats, err := h.listingService.MarketStats(c.Request.Context(), brand, modelLine, year)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ListingHandler) pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit: " + raw})
			return 0, 0, false
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset: " + raw})
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing id: " + c.Param("id")})
		return 0, false
	}
	return id, true
}
