package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	listingmodels "io.winapps.thankasoldier/internal/models/listing"
	"io.winapps.thankasoldier/internal/views"
)

// ListGuestbook handles GET /api/guestbook
func (h *ContentHandler) ListGuestbook(c *gin.Context) {
	items := h.presenter.GuestbookItems(h.reader.GuestbookEntries(c.Request.Context()))
	c.JSON(http.StatusOK, listingmodels.NewListResponse(items))
}

// GetNavigation handles GET /api/navigation?path=
func (h *ContentHandler) GetNavigation(c *gin.Context) {
	c.JSON(http.StatusOK, listingmodels.NewListResponse(views.Navigation(c.DefaultQuery("path", "/"))))
}
