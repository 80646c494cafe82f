// Package config loads service settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSanity   = "sanity"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	BlobS3       = "s3"
	BlobMinio    = "minio"
	BlobFirebase = "firebase"
	BlobMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Port     string
	LogLevel string

	ContentBackend string
	BlobBackend    string

	Sanity   Sanity
	Postgres Postgres
	Redis    Redis
	S3       S3
	Minio    Minio
	Firebase Firebase

	// BlobPublicBaseURL prefixes object keys of blob backends. For the
	// memory backend it defaults to the service's own /blobs route.
	BlobPublicBaseURL string

	StaticDir      string
	AllowedOrigins []string

	ContentStoreTimeout    time.Duration
	CacheTTL               time.Duration
	CacheWarmSchedule      string
	GalleryRequireApproval bool
	SubmitRateLimit        int
	MaxImageBytes          int64
	DefaultAudioTrack      string
}

type Sanity struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
}

type Postgres struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

// DSN returns URL when set, otherwise a URL assembled from the parts.
func (p Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Redis struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

type S3 struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Firebase struct {
	ServiceAccountPath string
	ProjectID          string
	StorageBucket      string
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []string

	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return d
	}
	integer := func(key, def string) int {
		n, err := strconv.Atoi(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return n
	}
	boolean := func(key, def string) bool {
		b, err := strconv.ParseBool(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return b
	}

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "9091"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		Sanity: Sanity{
			ProjectID:  os.Getenv("SANITY_PROJECT_ID"),
			Dataset:    getEnvOrDefault("SANITY_DATASET", "production"),
			APIVersion: getEnvOrDefault("SANITY_API_VERSION", "2024-01-01"),
			Token:      os.Getenv("SANITY_API_TOKEN"),
			UseCDN:     boolean("SANITY_USE_CDN", "true"),
		},
		Postgres: Postgres{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       getEnvOrDefault("POSTGRES_DB", "thankasoldier"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		Redis: Redis{
			Enabled:  boolean("REDIS_ENABLED", "true"),
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       integer("REDIS_DB", "0"),
		},
		S3: S3{
			Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
		},
		Minio: Minio{
			Endpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnvOrDefault("MINIO_BUCKET", "thankasoldier"),
			UseSSL:    boolean("MINIO_USE_SSL", "false"),
		},
		Firebase: Firebase{
			ServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
			ProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
			StorageBucket:      os.Getenv("FIREBASE_STORAGE_BUCKET"),
		},

		BlobBackend:       getEnvOrDefault("BLOB_BACKEND", BlobMemory),
		BlobPublicBaseURL: os.Getenv("BLOB_PUBLIC_BASE_URL"),

		StaticDir:      getEnvOrDefault("STATIC_DIR", "./public"),
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		ContentStoreTimeout:    duration("CONTENT_STORE_TIMEOUT", "10s"),
		CacheTTL:               duration("CACHE_TTL", "60s"),
		CacheWarmSchedule:      getEnvOrDefault("CACHE_WARM_SCHEDULE", "@every 5m"),
		GalleryRequireApproval: boolean("GALLERY_REQUIRE_APPROVAL", "false"),
		SubmitRateLimit:        integer("SUBMIT_RATE_LIMIT", "10"),
		MaxImageBytes:          int64(integer("MAX_IMAGE_BYTES", "5242880")),
		DefaultAudioTrack:      getEnvOrDefault("DEFAULT_AUDIO_TRACK", "/audio/memorial-music.mp3"),
	}

	// the CMS is the production store; without a project fall back to the
	// seeded in-memory store
	defaultBackend := BackendMemory
	if cfg.Sanity.ProjectID != "" {
		defaultBackend = BackendSanity
	}
	cfg.ContentBackend = getEnvOrDefault("CONTENT_BACKEND", defaultBackend)

	switch cfg.ContentBackend {
	case BackendSanity:
		if cfg.Sanity.ProjectID == "" {
			errs = append(errs, "SANITY_PROJECT_ID is required for the sanity backend")
		}
	case BackendPostgres, BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("unknown CONTENT_BACKEND %q", cfg.ContentBackend))
	}

	switch cfg.BlobBackend {
	case BlobS3:
		if cfg.S3.Bucket == "" {
			errs = append(errs, "S3_BUCKET is required for the s3 blob backend")
		}
	case BlobMinio, BlobFirebase, BlobMemory:
	default:
		errs = append(errs, fmt.Sprintf("unknown BLOB_BACKEND %q", cfg.BlobBackend))
	}

	if cfg.ContentStoreTimeout <= 0 && len(errs) == 0 {
		errs = append(errs, "CONTENT_STORE_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
