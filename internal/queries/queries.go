// Package queries is the read side of the site. Every operation fails soft:
// store errors are logged and the caller gets an empty list or nil.
package queries

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"io.winapps.thankasoldier/internal/cache"
	"io.winapps.thankasoldier/internal/content"
)

const (
	// FeaturedLimit is the number of memorials on the home page.
	FeaturedLimit = 6

	// DefaultWallLimit is used when the wall is requested without a limit.
	DefaultWallLimit = 12

	defaultTimeout = 10 * time.Second
)

// Cache keys.
const (
	keyFeatured  = "memorials:featured"
	keyMemorials = "memorials:all"
	keyApproved  = "memorials:approved"
	keyTimeline  = "timeline"
	keyMediaAll  = "media:all"
	keyImages    = "media:images"
	keyGuestbook = "guestbook"
)

// Service runs display queries against a content store.
type Service struct {
	store           content.Store
	cache           *cache.Cache
	logger          *zap.SugaredLogger
	timeout         time.Duration
	requireApproval bool
	shuffle         func(n int, swap func(i, j int))
	bypassCache     bool
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the read-through cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithTimeout bounds every store call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRequireApproval hides unapproved memorials from the gallery listing.
func WithRequireApproval(require bool) Option {
	return func(s *Service) { s.requireApproval = require }
}

// WithRand makes the wall shuffle deterministic.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.shuffle = r.Shuffle }
}

// New creates a Service.
func New(store content.Store, logger *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  logger,
		timeout: defaultTimeout,
		shuffle: rand.Shuffle,
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithoutCache returns a copy that skips cache lookups but still refreshes
// cached values.
func (s *Service) WithoutCache() *Service {
	cp := *s
	cp.bypassCache = true
	return &cp
}

// cached returns the cached value of key or fetches and stores it. Failed
// fetches are never cached.
func cached[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	var value T
	if !s.bypassCache {
		hit, err := s.cache.Get(ctx, key, &value)
		if err != nil {
			s.logger.Warnw("cache read failed", "key", key, "error", err)
		}
		if hit {
			return value, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warnw("cache write failed", "key", key, "error", err)
	}
	return value, nil
}

func (s *Service) logFailure(query string, err error, fields ...any) {
	fields = append(fields, "query", query, "code", content.ErrorCode(err), "error", err)
	s.logger.Errorw("content query failed", fields...)
}

// withTributeCounts sets TributeCount on every memorial from the approved
// tributes pointing back at it.
func (s *Service) withTributeCounts(ctx context.Context, memorials []content.Memorial) ([]content.Memorial, error) {
	ids, err := s.store.ApprovedTributeMemorialIDs(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}
	for i := range memorials {
		memorials[i].TributeCount = counts[memorials[i].ID]
	}
	return memorials, nil
}

// FeaturedMemorials returns up to six featured memorials with tribute counts.
func (s *Service) FeaturedMemorials(ctx context.Context) []content.Memorial {
	out, err := cached(ctx, s, keyFeatured, func(ctx context.Context) ([]content.Memorial, error) {
		memorials, err := s.store.FeaturedMemorials(ctx, FeaturedLimit)
		if err != nil {
			return nil, err
		}
		// the limit is part of the contract whatever the backend does
		if len(memorials) > FeaturedLimit {
			memorials = memorials[:FeaturedLimit]
		}
		return s.withTributeCounts(ctx, memorials)
	})
	if err != nil {
		s.logFailure("featured memorials", err)
		return []content.Memorial{}
	}
	return out
}

// AllMemorials returns the gallery listing with tribute counts. Unapproved
// memorials are included unless the service requires approval.
func (s *Service) AllMemorials(ctx context.Context) []content.Memorial {
	key := keyMemorials
	if s.requireApproval {
		key = keyApproved
	}

	out, err := cached(ctx, s, key, func(ctx context.Context) ([]content.Memorial, error) {
		memorials, err := s.store.Memorials(ctx, s.requireApproval)
		if err != nil {
			return nil, err
		}
		return s.withTributeCounts(ctx, memorials)
	})
	if err != nil {
		s.logFailure("all memorials", err)
		return []content.Memorial{}
	}
	return out
}

// MemorialByID returns one memorial with its approved tributes, or nil.
// Detail lookups are not cached so approvals show up immediately.
func (s *Service) MemorialByID(ctx context.Context, id string) *content.Memorial {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m, err := s.store.Memorial(ctx, id)
	if errors.Is(err, content.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logFailure("memorial by id", err, "memorial_id", id)
		return nil
	}

	tributes, err := s.store.ApprovedTributes(ctx, id)
	if err != nil {
		s.logFailure("memorial tributes", err, "memorial_id", id)
		return nil
	}

	m.Tributes = tributes
	m.TributeCount = len(tributes)
	return m
}

// TimelineEvents returns events ordered by date, newest first.
func (s *Service) TimelineEvents(ctx context.Context) []content.TimelineEvent {
	out, err := cached(ctx, s, keyTimeline, s.store.TimelineEvents)
	if err != nil {
		s.logFailure("timeline events", err)
		return []content.TimelineEvent{}
	}
	return out
}

// TimelinePage is the data behind the timeline view.
type TimelinePage struct {
	Events    []content.TimelineEvent
	Memorials []content.Memorial
}

// TimelinePage loads events and memorials concurrently. A failing half
// degrades to an empty section.
func (s *Service) TimelinePage(ctx context.Context) TimelinePage {
	var page TimelinePage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page.Events = s.TimelineEvents(gctx)
		return nil
	})
	g.Go(func() error {
		page.Memorials = s.AllMemorials(gctx)
		return nil
	})
	_ = g.Wait()

	return page
}

// MediaByCategory returns the media of one category, newest first.
func (s *Service) MediaByCategory(ctx context.Context, category content.Category) []content.MediaAsset {
	if category == "" {
		return s.AllMedia(ctx)
	}

	out, err := cached(ctx, s, "media:category:"+string(category), func(ctx context.Context) ([]content.MediaAsset, error) {
		return s.store.Media(ctx, content.MediaFilter{Category: category})
	})
	if err != nil {
		s.logFailure("media by category", err, "category", category)
		return []content.MediaAsset{}
	}
	return out
}

// AllMedia returns every media asset, newest first.
func (s *Service) AllMedia(ctx context.Context) []content.MediaAsset {
	out, err := cached(ctx, s, keyMediaAll, func(ctx context.Context) ([]content.MediaAsset, error) {
		return s.store.Media(ctx, content.MediaFilter{})
	})
	if err != nil {
		s.logFailure("all media", err)
		return []content.MediaAsset{}
	}
	return out
}

// RandomMediaForWall returns up to limit image assets in uniformly random
// order. Only the unshuffled list is cached.
func (s *Service) RandomMediaForWall(ctx context.Context, limit int) []content.MediaAsset {
	if limit <= 0 {
		limit = DefaultWallLimit
	}

	images, err := cached(ctx, s, keyImages, func(ctx context.Context) ([]content.MediaAsset, error) {
		return s.store.Media(ctx, content.MediaFilter{MediaType: content.MediaImage})
	})
	if err != nil {
		s.logFailure("random media for wall", err)
		return []content.MediaAsset{}
	}

	out := make([]content.MediaAsset, 0, len(images))
	for _, m := range images {
		// backends filter already; a stale cache entry must not leak audio onto the wall
		if m.IsImage() {
			out = append(out, m)
		}
	}

	s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GuestbookEntries returns approved entries, newest first, with Location
// copied into Relationship for display.
func (s *Service) GuestbookEntries(ctx context.Context) []content.GuestbookEntry {
	out, err := cached(ctx, s, keyGuestbook, s.store.ApprovedGuestbookEntries)
	if err != nil {
		s.logFailure("guestbook entries", err)
		return []content.GuestbookEntry{}
	}

	entries := make([]content.GuestbookEntry, 0, len(out))
	for _, e := range out {
		if !e.Approved {
			continue
		}
		e.Relationship = e.Location
		entries = append(entries, e)
	}
	return entries
}

// Warm refreshes the cached hot queries from the store.
func (s *Service) Warm(ctx context.Context) {
	fresh := s.WithoutCache()
	fresh.FeaturedMemorials(ctx)
	fresh.AllMemorials(ctx)
	fresh.TimelineEvents(ctx)
	fresh.GuestbookEntries(ctx)
	fresh.RandomMediaForWall(ctx, DefaultWallLimit)
}

// Invalidate drops cached listings touched by new submissions.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, keyFeatured, keyMemorials, keyApproved, keyGuestbook); err != nil {
		s.logger.Warnw("cache invalidation failed", "error", err)
	}
}
