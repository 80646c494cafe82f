package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	listingmodels "io.winapps.thankasoldier/internal/models/listing"
)

const (
	defaultAnniversaries = 5
	maxListLimit         = 100
)

// GetFeaturedMemorials handles GET /api/memorials/featured
func (h *ContentHandler) GetFeaturedMemorials(c *gin.Context) {
	cards := h.presenter.MemorialCards(h.reader.FeaturedMemorials(c.Request.Context()))
	c.JSON(http.StatusOK, listingmodels.NewListResponse(cards))
}

// ListMemorials handles GET /api/memorials
func (h *ContentHandler) ListMemorials(c *gin.Context) {
	cards := h.presenter.MemorialCards(h.reader.AllMemorials(c.Request.Context()))
	c.JSON(http.StatusOK, listingmodels.NewListResponse(cards))
}

// ListAnniversaries handles GET /api/memorials/anniversaries?limit=
func (h *ContentHandler) ListAnniversaries(c *gin.Context) {
	limit, ok := limitParam(c, defaultAnniversaries)
	if !ok {
		return
	}
	upcoming := h.presenter.UpcomingAnniversaries(h.reader.AllMemorials(c.Request.Context()), limit)
	c.JSON(http.StatusOK, listingmodels.NewListResponse(upcoming))
}

// limitParam parses ?limit=, writing a 400 when it is not a positive
// integer. Values above maxListLimit are clamped.
func limitParam(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return min(limit, maxListLimit), true
}
