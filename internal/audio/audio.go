// Package audio models the background music player: its persisted mute and
// volume preferences and where its track comes from.
package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"io.winapps.thankasoldier/internal/content"
)

const (
	DefaultVolume = 30
	MaxVolume     = 100
)

// Settings are the persisted player preferences.
type Settings struct {
	Muted  bool `json:"muted"`
	Volume int  `json:"volume"`
}

// DefaultSettings starts muted at volume 30.
func DefaultSettings() Settings {
	return Settings{Muted: true, Volume: DefaultVolume}
}

// SettingsStore persists settings per visitor. Load returns ok=false when
// nothing was saved yet.
type SettingsStore interface {
	Load(ctx context.Context, visitorID string) (Settings, bool, error)
	Save(ctx context.Context, visitorID string, s Settings) error
}

// MemorySettingsStore keeps settings in process memory.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings map[string]Settings
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{settings: map[string]Settings{}}
}

func (m *MemorySettingsStore) Load(_ context.Context, visitorID string) (Settings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[visitorID]
	return s, ok, nil
}

func (m *MemorySettingsStore) Save(_ context.Context, visitorID string, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[visitorID] = s
	return nil
}

// RedisSettingsStore keeps settings in Redis with a sliding TTL.
type RedisSettingsStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSettingsStore(client redis.Cmdable) *RedisSettingsStore {
	return &RedisSettingsStore{client: client, ttl: 365 * 24 * time.Hour}
}

func settingsKey(visitorID string) string {
	return "audio:settings:" + visitorID
}

func (r *RedisSettingsStore) Load(ctx context.Context, visitorID string) (Settings, bool, error) {
	data, err := r.client.Get(ctx, settingsKey(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("failed to load audio settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, false, fmt.Errorf("failed to decode audio settings: %w", err)
	}
	return s, true, nil
}

func (r *RedisSettingsStore) Save(ctx context.Context, visitorID string, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode audio settings: %w", err)
	}
	if err := r.client.Set(ctx, settingsKey(visitorID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save audio settings: %w", err)
	}
	return nil
}

// Player holds one visitor's playback state. Play state is not persisted.
type Player struct {
	store     SettingsStore
	visitorID string
	settings  Settings
	playing   bool
}

// NewPlayer loads the visitor's saved settings, or the defaults.
func NewPlayer(ctx context.Context, store SettingsStore, visitorID string) (*Player, error) {
	p := &Player{store: store, visitorID: visitorID, settings: DefaultSettings()}

	saved, ok, err := store.Load(ctx, visitorID)
	if err != nil {
		return p, err
	}
	if ok {
		saved.Volume = clamp(saved.Volume)
		p.settings = saved
	}
	return p, nil
}

func (p *Player) Settings() Settings { return p.settings }
func (p *Player) Playing() bool      { return p.playing }

// TogglePlay starts or pauses playback. Starting a muted player unmutes it.
func (p *Player) TogglePlay(ctx context.Context) error {
	p.playing = !p.playing
	if p.playing && p.settings.Muted {
		p.settings.Muted = false
		return p.save(ctx)
	}
	return nil
}

// ToggleMute flips the mute preference.
func (p *Player) ToggleMute(ctx context.Context) error {
	return p.SetMuted(ctx, !p.settings.Muted)
}

// SetMuted sets the mute preference.
func (p *Player) SetMuted(ctx context.Context, muted bool) error {
	p.settings.Muted = muted
	return p.save(ctx)
}

// SetVolume sets the volume, clamped to 0..100. Raising it above zero
// unmutes the player.
func (p *Player) SetVolume(ctx context.Context, volume int) error {
	p.settings.Volume = clamp(volume)
	if p.settings.Volume > 0 && p.settings.Muted {
		p.settings.Muted = false
	}
	return p.save(ctx)
}

func (p *Player) save(ctx context.Context) error {
	return p.store.Save(ctx, p.visitorID, p.settings)
}

func clamp(v int) int {
	return min(max(v, 0), MaxVolume)
}

// MediaLister lists media of a category. Implementations fail soft.
type MediaLister interface {
	MediaByCategory(ctx context.Context, category content.Category) []content.MediaAsset
}

// URLResolver turns a media asset into a playable URL.
type URLResolver interface {
	MediaURL(asset content.MediaAsset) string
}

// ResolveSource returns the URL of the first background music track, or
// fallback when there is none.
func ResolveSource(ctx context.Context, lister MediaLister, urls URLResolver, fallback string) string {
	for _, asset := range lister.MediaByCategory(ctx, content.CategoryBackgroundMusic) {
		if asset.MediaType != content.MediaAudio {
			continue
		}
		if url := urls.MediaURL(asset); url != "" {
			return url
		}
	}
	return fallback
}
