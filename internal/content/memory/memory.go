// Package memory is an in-process content store for local development and
// tests. Approve stands in for the CMS moderation screen.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/content"
)

// Store keeps every document in maps guarded by a single lock.
type Store struct {
	mu        sync.RWMutex
	blobs     blob.Storage
	memorials map[string]content.Memorial
	tributes  map[string]content.Tribute
	guestbook map[string]content.GuestbookEntry
	timeline  map[string]content.TimelineEvent
	media     map[string]content.MediaAsset
	now       func() time.Time // UTC, matching what a JSON round trip yields
}

// NewStore creates an empty store that writes images to blobs.
func NewStore(blobs blob.Storage) *Store {
	if blobs == nil {
		blobs = blob.NewMemory("")
	}
	return &Store{
		blobs:     blobs,
		memorials: map[string]content.Memorial{},
		tributes:  map[string]content.Tribute{},
		guestbook: map[string]content.GuestbookEntry{},
		timeline:  map[string]content.TimelineEvent{},
		media:     map[string]content.MediaAsset{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts documents as an administrator would, keeping their ids and
// approval flags. Documents without an id get one.
func (s *Store) Seed(docs ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		switch d := doc.(type) {
		case content.Memorial:
			d.ID = orNewID(d.ID)
			if d.UpdatedAt.IsZero() {
				d.UpdatedAt = s.now()
			}
			d.UpdatedAt = d.UpdatedAt.UTC()
			s.memorials[d.ID] = d
		case content.Tribute:
			d.ID = orNewID(d.ID)
			s.tributes[d.ID] = d
		case content.GuestbookEntry:
			d.ID = orNewID(d.ID)
			s.guestbook[d.ID] = d
		case content.TimelineEvent:
			d.ID = orNewID(d.ID)
			s.timeline[d.ID] = d
		case content.MediaAsset:
			if err := content.Validate(d); err != nil {
				return err
			}
			d.ID = orNewID(d.ID)
			if d.CreatedAt.IsZero() {
				d.CreatedAt = s.now()
			}
			s.media[d.ID] = d
		default:
			return fmt.Errorf("memory: unsupported document %T", doc)
		}
	}
	return nil
}

// Approve flips the approval flag of a memorial, tribute or guestbook entry.
func (s *Store) Approve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.memorials[id]; ok {
		m.Approved = true
		s.memorials[id] = m
		return nil
	}
	if t, ok := s.tributes[id]; ok {
		t.Approved = true
		s.tributes[id] = t
		if t.MemorialID != "" {
			if m, ok := s.memorials[t.MemorialID]; ok {
				m.TributeRefs = append(m.TributeRefs, id)
				s.memorials[t.MemorialID] = m
			}
		}
		return nil
	}
	if e, ok := s.guestbook[id]; ok {
		e.Approved = true
		s.guestbook[id] = e
		return nil
	}
	return content.ErrNotFound
}

// Tribute returns a tribute regardless of approval.
func (s *Store) Tribute(id string) (content.Tribute, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tributes[id]
	return t, ok
}

// GuestbookEntry returns an entry regardless of approval.
func (s *Store) GuestbookEntry(id string) (content.GuestbookEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.guestbook[id]
	return e, ok
}

// Counts returns the number of memorials, tributes and guestbook entries.
func (s *Store) Counts() (memorials, tributes, guestbook int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memorials), len(s.tributes), len(s.guestbook)
}

// FeaturedMemorials implements content.Store.
func (s *Store) FeaturedMemorials(_ context.Context, limit int) ([]content.Memorial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.Memorial, 0)
	for _, m := range s.sortedMemorials() {
		if !m.Featured {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Memorials implements content.Store.
func (s *Store) Memorials(_ context.Context, approvedOnly bool) ([]content.Memorial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.Memorial, 0, len(s.memorials))
	for _, m := range s.sortedMemorials() {
		if approvedOnly && !m.Approved {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// sortedMemorials orders by name for stable listings; callers hold the lock.
func (s *Store) sortedMemorials() []content.Memorial {
	out := make([]content.Memorial, 0, len(s.memorials))
	for _, m := range s.memorials {
		out = append(out, cloneMemorial(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Memorial implements content.Store.
func (s *Store) Memorial(_ context.Context, id string) (*content.Memorial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memorials[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	m = cloneMemorial(m)
	return &m, nil
}

// ApprovedTributeMemorialIDs implements content.Store.
func (s *Store) ApprovedTributeMemorialIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tributes))
	for _, t := range s.tributes {
		if t.Approved && t.MemorialID != "" {
			ids = append(ids, t.MemorialID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ApprovedTributes implements content.Store.
func (s *Store) ApprovedTributes(_ context.Context, memorialID string) ([]content.Tribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.Tribute, 0)
	for _, t := range s.tributes {
		if t.Approved && t.MemorialID == memorialID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// TimelineEvents implements content.Store.
func (s *Store) TimelineEvents(_ context.Context) ([]content.TimelineEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.TimelineEvent, 0, len(s.timeline))
	for _, e := range s.timeline {
		if m, ok := s.memorials[e.MemorialID]; ok {
			e.MemorialName = m.Name
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out, nil
}

// Media implements content.Store.
func (s *Store) Media(_ context.Context, filter content.MediaFilter) ([]content.MediaAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.MediaAsset, 0)
	for _, a := range s.media {
		if !filter.Matches(a) {
			continue
		}
		if m, ok := s.memorials[a.MemorialID]; ok {
			a.MemorialName = m.Name
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ApprovedGuestbookEntries implements content.Store.
func (s *Store) ApprovedGuestbookEntries(_ context.Context) ([]content.GuestbookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.GuestbookEntry, 0)
	for _, e := range s.guestbook {
		if e.Approved {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// CreateMemorial implements content.Store.
func (s *Store) CreateMemorial(_ context.Context, m *content.Memorial) (string, error) {
	if err := content.Validate(m); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := cloneMemorial(*m)
	doc.ID = uuid.New().String()
	doc.UpdatedAt = s.now()
	s.memorials[doc.ID] = doc
	return doc.ID, nil
}

// CreateTribute implements content.Store.
func (s *Store) CreateTribute(_ context.Context, t *content.Tribute) (string, error) {
	if err := content.Validate(t); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.MemorialID != "" {
		if _, ok := s.memorials[t.MemorialID]; !ok {
			return "", &content.StoreError{Op: "create tribute", Code: "invalidReference", Err: content.ErrNotFound}
		}
	}

	doc := *t
	doc.ID = uuid.New().String()
	s.tributes[doc.ID] = doc
	return doc.ID, nil
}

// CreateGuestbookEntry implements content.Store.
func (s *Store) CreateGuestbookEntry(_ context.Context, e *content.GuestbookEntry) (string, error) {
	if err := content.Validate(e); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := *e
	doc.ID = uuid.New().String()
	s.guestbook[doc.ID] = doc
	return doc.ID, nil
}

// UploadImage implements content.Store.
func (s *Store) UploadImage(ctx context.Context, upload content.ImageUpload) (*content.ImageRef, error) {
	return blob.PutImage(ctx, s.blobs, upload)
}

func cloneMemorial(m content.Memorial) content.Memorial {
	m.TributeRefs = append([]string(nil), m.TributeRefs...)
	m.Tributes = nil
	return m
}

func orNewID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}
