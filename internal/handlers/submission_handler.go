package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/middleware"
	submissionmodels "io.winapps.thankasoldier/internal/models/submission"
)

// DefaultMaxImageBytes caps memorial image uploads.
const DefaultMaxImageBytes = 5 << 20

// Invalidator drops cached listings after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// SubmissionHandler creates unapproved documents from public forms.
type SubmissionHandler struct {
	store         content.Store
	invalidator   Invalidator
	logger        *zap.SugaredLogger
	maxImageBytes int64
	now           func() time.Time
}

// NewSubmissionHandler creates a new submission handler. invalidator may be nil.
func NewSubmissionHandler(store content.Store, invalidator Invalidator, logger *zap.SugaredLogger, maxImageBytes int64) *SubmissionHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &SubmissionHandler{
		store:         store,
		invalidator:   invalidator,
		logger:        logger,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// badRequest writes a 400 for validation errors and reports whether it did.
func badRequest(c *gin.Context, err error) bool {
	var verr validationError
	if !errors.As(err, &verr) {
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	return true
}

// invalidRequest writes the 400 for a failed bind, using rules to phrase
// field validation failures.
func invalidRequest(c *gin.Context, err error, rules []fieldRule) {
	if msg, ok := bindingMessage(err, rules); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}

// storeFailure writes the 500 body for a failed write. Schema violations
// the handler did not catch are still the client's fault and return 400.
func (h *SubmissionHandler) storeFailure(c *gin.Context, err error, what string) {
	if errors.Is(err, content.ErrInvalidDocument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " submission"})
		return
	}

	code := content.ErrorCode(err)
	c.Set(middleware.StoreErrorCodeKey, code)
	h.logError(c, err, "Error submitting "+what)
	c.JSON(http.StatusInternalServerError, submissionmodels.SubmissionErrorResponse{
		Error:   "Failed to submit " + what,
		Details: err.Error(),
		Code:    code,
	})
}

func (h *SubmissionHandler) created(c *gin.Context, id string) {
	if h.invalidator != nil {
		h.invalidator.Invalidate(c.Request.Context())
	}
	c.JSON(http.StatusOK, submissionmodels.SubmissionResponse{Success: true, ID: id})
}
