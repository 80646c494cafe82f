package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SANITY_PROJECT_ID", "")
	t.Setenv("CONTENT_BACKEND", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9091", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.ContentBackend)
	assert.Equal(t, BlobMemory, cfg.BlobBackend)
	assert.Equal(t, 10*time.Second, cfg.ContentStoreTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "@every 5m", cfg.CacheWarmSchedule)
	assert.Equal(t, 10, cfg.SubmitRateLimit)
	assert.Equal(t, int64(5<<20), cfg.MaxImageBytes)
	assert.Equal(t, "/audio/memorial-music.mp3", cfg.DefaultAudioTrack)
	assert.False(t, cfg.GalleryRequireApproval)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestFromEnv_SanityIsDefaultWithProject(t *testing.T) {
	t.Setenv("SANITY_PROJECT_ID", "abc123")
	t.Setenv("CONTENT_BACKEND", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendSanity, cfg.ContentBackend)
	assert.Equal(t, "production", cfg.Sanity.Dataset)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("CONTENT_BACKEND", "mongo")
	t.Setenv("CACHE_TTL", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONTENT_BACKEND")
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestFromEnv_SanityRequiresProject(t *testing.T) {
	t.Setenv("SANITY_PROJECT_ID", "")
	t.Setenv("CONTENT_BACKEND", BackendSanity)

	_, err := FromEnv()
	assert.ErrorContains(t, err, "SANITY_PROJECT_ID")
}

func TestPostgres_DSN(t *testing.T) {
	p := Postgres{Host: "db", Port: "5432", User: "u", Password: "p", DB: "memorials", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/memorials?sslmode=disable", p.DSN())

	p.URL = "postgres://override"
	assert.Equal(t, "postgres://override", p.DSN())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, splitList(" https://a.org, ,https://b.org "))
	assert.Nil(t, splitList(""))
}
