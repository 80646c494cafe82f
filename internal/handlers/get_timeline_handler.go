package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	listingmodels "io.winapps.thankasoldier/internal/models/listing"
	timelinemodels "io.winapps.thankasoldier/internal/models/timeline"
)

// GetTimeline handles GET /api/timeline
func (h *ContentHandler) GetTimeline(c *gin.Context) {
	page := h.reader.TimelinePage(c.Request.Context())
	events := h.presenter.TimelineItems(page.Events)

	c.JSON(http.StatusOK, timelinemodels.TimelineResponse{
		Data:      events,
		Memorials: h.presenter.MemorialCards(page.Memorials),
		Meta:      listingmodels.Meta{Count: len(events)},
	})
}
