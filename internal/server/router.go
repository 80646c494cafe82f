// Package server wires handlers and middleware into the HTTP router.
package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.winapps.thankasoldier/internal/audio"
	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/config"
	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/countdown"
	"io.winapps.thankasoldier/internal/handlers"
	"io.winapps.thankasoldier/internal/middleware"
	"io.winapps.thankasoldier/internal/queries"
	"io.winapps.thankasoldier/internal/views"
)

// URLResolver resolves asset references for both views and audio.
type URLResolver interface {
	views.URLResolver
	audio.URLResolver
}

// Deps are the collaborators of the router. Redis, Blobs and Clock are
// optional.
type Deps struct {
	Config        config.Config
	Logger        *zap.SugaredLogger
	Store         content.Store
	Queries       *queries.Service
	URLs          URLResolver
	AudioSettings audio.SettingsStore
	Redis         redis.Cmdable
	Blobs         *blob.Memory
	Clock         countdown.Clock
}

// NewRouter builds the gin engine serving the API and static assets.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(d.Logger),
		middleware.RequestLoggingMiddleware(d.Logger),
		middleware.CORS(d.Config.AllowedOrigins),
	)

	presenter := views.NewPresenter(d.URLs)
	contentHandler := handlers.NewContentHandler(d.Queries, presenter, d.Logger)
	submissionHandler := handlers.NewSubmissionHandler(d.Store, d.Queries, d.Logger, d.Config.MaxImageBytes)
	countdownHandler := handlers.NewCountdownHandler(d.Clock, d.Logger)
	audioHandler := handlers.NewAudioHandler(d.Queries, d.URLs, d.AudioSettings, d.Config.DefaultAudioTrack, d.Logger)

	throttle := middleware.Throttle(d.Redis, d.Config.SubmitRateLimit, d.Logger)

	api := router.Group("/api")
	{
		memorials := api.Group("/memorials")
		{
			memorials.GET("", contentHandler.ListMemorials)
			memorials.GET("/featured", contentHandler.GetFeaturedMemorials)
			memorials.GET("/anniversaries", contentHandler.ListAnniversaries)
			memorials.GET("/:id", contentHandler.GetMemorial)
			memorials.POST("", throttle, submissionHandler.SubmitMemorial)
		}

		api.POST("/tributes", throttle, submissionHandler.SubmitTribute)

		api.GET("/guestbook", contentHandler.ListGuestbook)
		api.POST("/guestbook", throttle, submissionHandler.SubmitGuestbook)

		api.GET("/timeline", contentHandler.GetTimeline)
		api.GET("/media", contentHandler.ListMedia)
		api.GET("/media/wall", contentHandler.GetMediaWall)
		api.GET("/navigation", contentHandler.GetNavigation)

		api.GET("/countdown", countdownHandler.GetCountdown)
		api.GET("/countdown/stream", countdownHandler.StreamCountdown)

		api.GET("/audio/source", audioHandler.GetSource)
		api.GET("/audio/settings", audioHandler.GetSettings)
		api.PUT("/audio/settings", audioHandler.UpdateSettings)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Blobs != nil {
		router.GET("/blobs/*key", serveBlob(d.Blobs))
	}

	if dir := d.Config.StaticDir; dir != "" {
		router.Static("/images", filepath.Join(dir, "images"))
		router.Static("/audio", filepath.Join(dir, "audio"))
	}

	return router
}

func serveBlob(store *blob.Memory) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj, ok := store.Get(strings.TrimPrefix(c.Param("key"), "/"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.Data(http.StatusOK, obj.ContentType, obj.Data)
	}
}
