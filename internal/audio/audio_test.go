package audio

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.winapps.thankasoldier/internal/assets"
	"io.winapps.thankasoldier/internal/content"
)

func TestNewPlayer_Defaults(t *testing.T) {
	p, err := NewPlayer(context.Background(), NewMemorySettingsStore(), "v1")
	require.NoError(t, err)

	assert.Equal(t, Settings{Muted: true, Volume: 30}, p.Settings())
	assert.False(t, p.Playing())
}

func TestPlayer_TogglePlayUnmutes(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySettingsStore()
	p, err := NewPlayer(ctx, store, "v1")
	require.NoError(t, err)

	require.NoError(t, p.TogglePlay(ctx))
	assert.True(t, p.Playing())
	assert.False(t, p.Settings().Muted)

	saved, ok, err := store.Load(ctx, "v1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, saved.Muted)

	require.NoError(t, p.TogglePlay(ctx))
	assert.False(t, p.Playing())
	assert.False(t, p.Settings().Muted, "pausing keeps the mute preference")
}

func TestPlayer_ToggleMutePersists(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySettingsStore()

	p, err := NewPlayer(ctx, store, "v1")
	require.NoError(t, err)
	require.NoError(t, p.ToggleMute(ctx))
	assert.False(t, p.Settings().Muted)

	again, err := NewPlayer(ctx, store, "v1")
	require.NoError(t, err)
	assert.False(t, again.Settings().Muted)

	other, err := NewPlayer(ctx, store, "v2")
	require.NoError(t, err)
	assert.True(t, other.Settings().Muted)
}

func TestPlayer_SetVolume(t *testing.T) {
	ctx := context.Background()
	p, err := NewPlayer(ctx, NewMemorySettingsStore(), "v1")
	require.NoError(t, err)

	require.NoError(t, p.SetVolume(ctx, 0))
	assert.True(t, p.Settings().Muted, "zero volume does not unmute")
	assert.Equal(t, 0, p.Settings().Volume)

	require.NoError(t, p.SetVolume(ctx, 150))
	assert.Equal(t, 100, p.Settings().Volume)
	assert.False(t, p.Settings().Muted)

	require.NoError(t, p.SetVolume(ctx, -5))
	assert.Equal(t, 0, p.Settings().Volume)
}

func TestRedisSettingsStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisSettingsStore(client)
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "v1", Settings{Muted: false, Volume: 55}))
	assert.True(t, mr.Exists("audio:settings:v1"))

	got, ok, err := store.Load(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Settings{Muted: false, Volume: 55}, got)

	require.NoError(t, mr.Set("audio:settings:v2", "garbage"))
	_, _, err = store.Load(ctx, "v2")
	assert.Error(t, err)
}

type listerFunc func(content.Category) []content.MediaAsset

func (f listerFunc) MediaByCategory(_ context.Context, c content.Category) []content.MediaAsset {
	return f(c)
}

func TestResolveSource(t *testing.T) {
	urls := assets.NewBuilder("proj", "production")
	ctx := context.Background()

	withTrack := listerFunc(func(c content.Category) []content.MediaAsset {
		assert.Equal(t, content.CategoryBackgroundMusic, c)
		return []content.MediaAsset{{
			ID: "a1", MediaType: content.MediaAudio, Category: c,
			OtherFile: &content.FileRef{AssetRef: "file-abc123-mp3"},
		}}
	})
	assert.Equal(t, "https://cdn.sanity.io/files/proj/production/abc123.mp3",
		ResolveSource(ctx, withTrack, urls, "/audio/memorial-music.mp3"))

	empty := listerFunc(func(content.Category) []content.MediaAsset { return nil })
	assert.Equal(t, "/audio/memorial-music.mp3", ResolveSource(ctx, empty, urls, "/audio/memorial-music.mp3"))

	unresolvable := listerFunc(func(content.Category) []content.MediaAsset {
		return []content.MediaAsset{{MediaType: content.MediaAudio, OtherFile: &content.FileRef{AssetRef: "garbage"}}}
	})
	assert.Equal(t, "/fallback.mp3", ResolveSource(ctx, unresolvable, urls, "/fallback.mp3"))
}
