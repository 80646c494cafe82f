package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.thankasoldier/internal/content"
	listingmodels "io.winapps.thankasoldier/internal/models/listing"
)

func validCategory(c content.Category) bool {
	switch c {
	case "", content.CategoryMemorialPhotos, content.CategoryOrganizationHistory,
		content.CategoryTributes, content.CategoryEvents, content.CategoryBackgroundMusic:
		return true
	}
	return false
}

// ListMedia handles GET /api/media?category=
func (h *ContentHandler) ListMedia(c *gin.Context) {
	category := content.Category(c.Query("category"))
	if !validCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown media category"})
		return
	}

	items := h.presenter.MediaItems(h.reader.MediaByCategory(c.Request.Context(), category))
	c.JSON(http.StatusOK, listingmodels.NewListResponse(items))
}

// GetMediaWall handles GET /api/media/wall?limit=
func (h *ContentHandler) GetMediaWall(c *gin.Context) {
	limit, ok := limitParam(c, 0)
	if !ok {
		return
	}
	items := h.presenter.MediaItems(h.reader.RandomMediaForWall(c.Request.Context(), limit))
	c.JSON(http.StatusOK, listingmodels.NewListResponse(items))
}
