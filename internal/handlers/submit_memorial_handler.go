package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/middleware"
	memorialmodels "io.winapps.thankasoldier/internal/models/submit_memorial"
)

// SubmitMemorial handles POST /api/memorials. The image, when present, is
// uploaded before the document is created; a failed create leaves the
// uploaded asset behind.
func (h *SubmissionHandler) SubmitMemorial(c *gin.Context) {
	c.Set(middleware.SubmissionKindKey, "memorial")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+1<<20)

	var req memorialmodels.SubmitMemorialRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": h.imageTooLargeMessage()})
			return
		}
		invalidRequest(c, err, memorialRules)
		return
	}

	upload, err := h.readImage(c)
	if badRequest(c, err) {
		return
	}
	if err != nil {
		h.logError(c, err, "Error reading memorial image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()
	memorial := &content.Memorial{
		Name:      req.Name,
		Role:      req.Role,
		Unit:      req.Unit,
		Status:    content.Status(req.Status),
		BirthDate: req.BirthDate,
		DeathDate: req.DeathDate,
		Biography: req.Biography,
		Approved:  false,
		Featured:  false,
	}

	if upload != nil {
		ref, err := h.store.UploadImage(ctx, *upload)
		if err != nil {
			h.storeFailure(c, err, "memorial")
			return
		}
		memorial.Image = ref
	}

	id, err := h.store.CreateMemorial(ctx, memorial)
	if err != nil {
		h.storeFailure(c, err, "memorial")
		return
	}
	h.created(c, id)
}

func (h *SubmissionHandler) imageTooLargeMessage() string {
	if h.maxImageBytes < 1<<20 {
		return fmt.Sprintf("Image size must be less than %dKB", h.maxImageBytes>>10)
	}
	return fmt.Sprintf("Image size must be less than %dMB", h.maxImageBytes>>20)
}

// readImage returns nil when the form has no image part or an empty one.
func (h *SubmissionHandler) readImage(c *gin.Context) (*content.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > h.maxImageBytes {
		return nil, validationError(h.imageTooLargeMessage())
	}

	data, err := readFormFile(fh)
	if err != nil {
		return nil, err
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, validationError("Please select a valid image file")
	}

	return &content.ImageUpload{
		Filename:    fh.Filename,
		ContentType: detected.String(),
		Data:        data,
	}, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
