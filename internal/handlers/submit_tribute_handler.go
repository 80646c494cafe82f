package handlers

import (
	"github.com/gin-gonic/gin"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/middleware"
	tributemodels "io.winapps.thankasoldier/internal/models/submit_tribute"
)

// SubmitTribute handles POST /api/tributes
func (h *SubmissionHandler) SubmitTribute(c *gin.Context) {
	c.Set(middleware.SubmissionKindKey, "tribute")

	var req tributemodels.SubmitTributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err, tributeRules)
		return
	}

	tribute := &content.Tribute{
		Author:       req.Author,
		Message:      req.Message,
		Relationship: req.Relationship,
		MemorialID:   req.MemorialID,
		Approved:     false,
		SubmittedAt:  h.now().UTC(),
	}

	id, err := h.store.CreateTribute(c.Request.Context(), tribute)
	if err != nil {
		h.storeFailure(c, err, "tribute")
		return
	}
	h.created(c, id)
}
