package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"io.winapps.thankasoldier/internal/assets"
	"io.winapps.thankasoldier/internal/audio"
	"io.winapps.thankasoldier/internal/cache"
	"io.winapps.thankasoldier/internal/db"
	"io.winapps.thankasoldier/internal/jobs"
	"io.winapps.thankasoldier/internal/queries"
	"io.winapps.thankasoldier/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	blobs, memBlobs, err := newBlobStorage(ctx, cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := newContentStore(ctx, cfg, blobs)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis is optional: without it there is no cache, throttle or shared
	// audio settings.
	var (
		redisCmd      redis.Cmdable
		audioSettings audio.SettingsStore = audio.NewMemorySettingsStore()
	)
	if cfg.Redis.Enabled {
		redisClient, err := db.InitRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warnw("Redis unavailable, running without cache", "error", err)
		} else {
			defer redisClient.Close()
			redisCmd = redisClient
			audioSettings = audio.NewRedisSettingsStore(redisClient)
		}
	}

	opts := []queries.Option{
		queries.WithTimeout(cfg.ContentStoreTimeout),
		queries.WithRequireApproval(cfg.GalleryRequireApproval),
	}
	if redisCmd != nil {
		opts = append(opts, queries.WithCache(cache.New(redisCmd, cfg.CacheTTL)))
	}
	svc := queries.New(store, logger, opts...)

	warmer, err := jobs.NewCacheWarmer(svc, cfg.CacheWarmSchedule, cfg.ContentStoreTimeout, logger)
	if err != nil {
		return err
	}
	if redisCmd != nil {
		warmer.Start()
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Config:        *cfg,
		Logger:        logger,
		Store:         store,
		Queries:       svc,
		URLs:          assets.NewBuilder(cfg.Sanity.ProjectID, cfg.Sanity.Dataset),
		AudioSettings: audioSettings,
		Redis:         redisCmd,
		Blobs:         memBlobs,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("Server starting",
			"port", cfg.Port,
			"content_backend", cfg.ContentBackend,
			"blob_backend", cfg.BlobBackend,
			"redis", redisCmd != nil,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	logger.Infow("Shutting down server...")

	// Give a 5 second timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if redisCmd != nil {
		warmer.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Infow("Server exited")
	return nil
}
