package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/middleware"
	guestbookmodels "io.winapps.thankasoldier/internal/models/submit_guestbook"
)

const defaultGuestbookLocation = "Visitor"

// SubmitGuestbook handles POST /api/guestbook
func (h *SubmissionHandler) SubmitGuestbook(c *gin.Context) {
	c.Set(middleware.SubmissionKindKey, "guestbook")

	var req guestbookmodels.SubmitGuestbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err, guestbookRules)
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = defaultGuestbookLocation
	}

	entry := &content.GuestbookEntry{
		Author:      req.Author,
		Message:     req.Message,
		Location:    location,
		Approved:    false,
		SubmittedAt: h.now().UTC(),
	}

	id, err := h.store.CreateGuestbookEntry(c.Request.Context(), entry)
	if err != nil {
		h.storeFailure(c, err, "guestbook entry")
		return
	}
	h.created(c, id)
}
