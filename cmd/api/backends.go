package main

import (
	"context"
	"fmt"

	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/config"
	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/content/memory"
	"io.winapps.thankasoldier/internal/content/postgres"
	"io.winapps.thankasoldier/internal/content/sanity"
	"io.winapps.thankasoldier/internal/db"
	firebaseutil "io.winapps.thankasoldier/internal/firebase"
)

const (
	// memoryBlobRoute is where the router serves blobs kept in process memory.
	memoryBlobRoute = "/blobs"

	staticImagesRoute = "/images"
)

// newBlobStorage builds the configured blob backend. The second result is
// set only for the memory backend, which the router has to serve itself.
func newBlobStorage(ctx context.Context, cfg *config.Config) (blob.Storage, *blob.Memory, error) {
	switch cfg.BlobBackend {
	case config.BlobMemory:
		base := cfg.BlobPublicBaseURL
		if base == "" {
			base = memoryBlobRoute
		}
		mem := blob.NewMemory(base)
		return mem, mem, nil

	case config.BlobS3:
		s3, err := blob.NewS3(ctx, blob.S3Config{
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			PublicBaseURL: cfg.BlobPublicBaseURL,
		})
		return s3, nil, err

	case config.BlobMinio:
		m, err := blob.NewMinio(blob.MinioConfig{
			Endpoint:      cfg.Minio.Endpoint,
			AccessKey:     cfg.Minio.AccessKey,
			SecretKey:     cfg.Minio.SecretKey,
			UseSSL:        cfg.Minio.UseSSL,
			Bucket:        cfg.Minio.Bucket,
			PublicBaseURL: cfg.BlobPublicBaseURL,
		})
		return m, nil, err

	case config.BlobFirebase:
		app, err := firebaseutil.InitFirebase(ctx, cfg.Firebase)
		if err != nil {
			return nil, nil, err
		}
		client, err := firebaseutil.GetStorageClient(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		return blob.NewFirebase(client, cfg.Firebase.StorageBucket, cfg.BlobPublicBaseURL), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}

// newContentStore builds the configured content backend. The returned
// cleanup releases its connections.
func newContentStore(ctx context.Context, cfg *config.Config, blobs blob.Storage) (content.Store, func(), error) {
	noop := func() {}

	switch cfg.ContentBackend {
	case config.BackendSanity:
		client, err := sanity.NewClient(sanity.Config{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			Token:      cfg.Sanity.Token,
			UseCDN:     cfg.Sanity.UseCDN,
		})
		if err != nil {
			return nil, noop, err
		}
		return sanity.NewStore(client), noop, nil

	case config.BackendPostgres:
		pool, err := db.InitPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		sqlDB := postgres.OpenDB(pool)
		if err := postgres.Migrate(ctx, sqlDB); err != nil {
			sqlDB.Close()
			pool.Close()
			return nil, noop, err
		}
		return postgres.NewStore(sqlDB, blobs), func() {
			sqlDB.Close()
			pool.Close()
		}, nil

	case config.BackendMemory:
		return memory.NewSeededStore(blobs, staticImagesRoute), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown content backend %q", cfg.ContentBackend)
}
