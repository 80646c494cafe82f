package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.thankasoldier/internal/countdown"
	countdownmodels "io.winapps.thankasoldier/internal/models/countdown"
)

// CountdownHandler serves the remaining time until a target instant.
type CountdownHandler struct {
	clock  countdown.Clock
	logger *zap.SugaredLogger
}

// NewCountdownHandler creates a new countdown handler. A nil clock uses the
// system clock.
func NewCountdownHandler(clock countdown.Clock, logger *zap.SugaredLogger) *CountdownHandler {
	if clock == nil {
		clock = countdown.SystemClock{}
	}
	return &CountdownHandler{clock: clock, logger: logger}
}

func (h *CountdownHandler) target(c *gin.Context) (time.Time, bool) {
	raw := c.Query("target")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target is required"})
		return time.Time{}, false
	}
	target, err := countdown.ParseTarget(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, false
	}
	return target, true
}

func countdownResponse(target time.Time, parts countdown.Parts) countdownmodels.CountdownResponse {
	return countdownmodels.CountdownResponse{
		Target:   target,
		Days:     parts.Days,
		Hours:    parts.Hours,
		Minutes:  parts.Minutes,
		Seconds:  parts.Seconds,
		Finished: parts.Done,
	}
}

// GetCountdown handles GET /api/countdown?target=
func (h *CountdownHandler) GetCountdown(c *gin.Context) {
	target, ok := h.target(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, countdownResponse(target, countdown.Remaining(h.clock.Now(), target)))
}

// StreamCountdown handles GET /api/countdown/stream?target= as server-sent
// events: one "tick" per second, then a single "done" once time is up.
func (h *CountdownHandler) StreamCountdown(c *gin.Context) {
	target, ok := h.target(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	err := countdown.Run(c.Request.Context(), h.clock, target, func(parts countdown.Parts) {
		c.SSEvent("tick", countdownResponse(target, parts))
		c.Writer.Flush()
	})
	if err != nil {
		if !errors.Is(err, c.Request.Context().Err()) {
			logWithContext(h.logger, c, "warn", "countdown stream ended", "error", err)
		}
		return
	}

	c.SSEvent("done", countdownResponse(target, countdown.Parts{Done: true}))
	c.Writer.Flush()
}
