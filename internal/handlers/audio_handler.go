package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.thankasoldier/internal/audio"
	audiomodels "io.winapps.thankasoldier/internal/models/audio_settings"
)

// AudioHandler serves the background music source and per-visitor player
// preferences.
type AudioHandler struct {
	lister   audio.MediaLister
	urls     audio.URLResolver
	settings audio.SettingsStore
	fallback string
	logger   *zap.SugaredLogger
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(lister audio.MediaLister, urls audio.URLResolver, settings audio.SettingsStore, fallback string, logger *zap.SugaredLogger) *AudioHandler {
	return &AudioHandler{
		lister:   lister,
		urls:     urls,
		settings: settings,
		fallback: fallback,
		logger:   logger,
	}
}

// GetSource handles GET /api/audio/source
func (h *AudioHandler) GetSource(c *gin.Context) {
	source := audio.ResolveSource(c.Request.Context(), h.lister, h.urls, h.fallback)
	c.JSON(http.StatusOK, audiomodels.AudioSourceResponse{Source: source})
}

func (h *AudioHandler) player(c *gin.Context) (*audio.Player, bool) {
	visitorID := c.GetString("visitor_id")
	if visitorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Visitor-ID header is required"})
		return nil, false
	}

	p, err := audio.NewPlayer(c.Request.Context(), h.settings, visitorID)
	if err != nil {
		h.logError(c, err, "Error loading audio settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audio settings"})
		return nil, false
	}
	return p, true
}

func settingsResponse(s audio.Settings) audiomodels.AudioSettingsResponse {
	return audiomodels.AudioSettingsResponse{Muted: s.Muted, Volume: s.Volume}
}

// GetSettings handles GET /api/audio/settings
func (h *AudioHandler) GetSettings(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, settingsResponse(p.Settings()))
}

// UpdateSettings handles PUT /api/audio/settings. Muted is applied after
// volume so an explicit mute wins over the unmute a volume change implies.
func (h *AudioHandler) UpdateSettings(c *gin.Context) {
	var req audiomodels.UpdateAudioSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	p, ok := h.player(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if req.Volume != nil {
		if err := p.SetVolume(ctx, *req.Volume); err != nil {
			h.logError(c, err, "Error saving audio settings")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save audio settings"})
			return
		}
	}
	if req.Muted != nil {
		if err := p.SetMuted(ctx, *req.Muted); err != nil {
			h.logError(c, err, "Error saving audio settings")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save audio settings"})
			return
		}
	}

	c.JSON(http.StatusOK, settingsResponse(p.Settings()))
}
