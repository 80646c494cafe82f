package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	getmemorialmodels "io.winapps.thankasoldier/internal/models/get_memorial"
)

// GetMemorial handles GET /api/memorials/:id
func (h *ContentHandler) GetMemorial(c *gin.Context) {
	id := c.Param("id")
	memorial := h.reader.MemorialByID(c.Request.Context(), id)
	if memorial == nil {
		logWithContext(h.logger, c, "debug", "memorial not found", "memorial_id", id)
		c.JSON(http.StatusNotFound, gin.H{"error": "Memorial not found"})
		return
	}
	c.JSON(http.StatusOK, getmemorialmodels.GetMemorialResponse{Data: h.presenter.MemorialDetail(*memorial)})
}
