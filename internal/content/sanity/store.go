package sanity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/portabletext"
)

// GROQ projections shared by the queries below.
const (
	memorialProjection = `{
	_id, name, role, unit, status, birthDate, deathDate, biography, image,
	approved, featured, _updatedAt,
	"tributeRefs": tributes[]._ref
}`

	tributeProjection = `{
	_id, author, relationship, message, approved, submittedAt, image,
	"memorialId": memorial._ref
}`

	mediaProjection = `{
	_id, title, description, mediaType, imageFile, otherFile, category, _createdAt,
	"memorialId": memorial._ref,
	"memorialName": memorial->name
}`
)

const (
	memorialByIDQuery         = `*[_type == "memorial" && _id == $id][0]` + memorialProjection
	approvedTributeRefsQuery  = `*[_type == "tribute" && approved == true && defined(memorial._ref)].memorial._ref`
	approvedTributesForQuery  = `*[_type == "tribute" && approved == true && memorial._ref == $id] | order(submittedAt desc)` + tributeProjection
	timelineEventsQuery       = `*[_type == "timelineEvent"] | order(date desc) {_id, title, date, description, eventType, image, "memorialId": memorial._ref, "memorialName": memorial->name}`
	approvedGuestbookQuery    = `*[_type == "guestbook" && approved == true] | order(submittedAt desc) {_id, author, location, message, approved, submittedAt, image}`
	allMemorialsQuery         = `*[_type == "memorial"] | order(name asc)` + memorialProjection
	approvedMemorialsQuery    = `*[_type == "memorial" && approved != false] | order(name asc)` + memorialProjection
	featuredMemorialsTemplate = `*[_type == "memorial" && featured == true] | order(_updatedAt desc)[0...%d]` + memorialProjection
)

// Store implements content.Store on top of the CMS.
type Store struct {
	client *Client
	now    func() time.Time
}

// NewStore wraps a client.
func NewStore(client *Client) *Store {
	return &Store{client: client, now: time.Now}
}

type rawAsset struct {
	Ref string `json:"_ref"`
	URL string `json:"url"`
}

type rawImage struct {
	Asset *rawAsset `json:"asset"`
}

func (r *rawImage) imageRef() *content.ImageRef {
	if r == nil || r.Asset == nil || (r.Asset.Ref == "" && r.Asset.URL == "") {
		return nil
	}
	return &content.ImageRef{AssetRef: r.Asset.Ref, URL: r.Asset.URL}
}

func (r *rawImage) fileRef() *content.FileRef {
	if r == nil || r.Asset == nil || (r.Asset.Ref == "" && r.Asset.URL == "") {
		return nil
	}
	return &content.FileRef{AssetRef: r.Asset.Ref, URL: r.Asset.URL}
}

type rawMemorial struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Unit        string    `json:"unit"`
	Status      string    `json:"status"`
	BirthDate   string    `json:"birthDate"`
	DeathDate   string    `json:"deathDate"`
	Biography   string    `json:"biography"`
	Image       *rawImage `json:"image"`
	Approved    *bool     `json:"approved"`
	Featured    bool      `json:"featured"`
	UpdatedAt   time.Time `json:"_updatedAt"`
	TributeRefs []string  `json:"tributeRefs"`
}

func (r rawMemorial) memorial() content.Memorial {
	return content.Memorial{
		ID:          r.ID,
		Name:        r.Name,
		Role:        r.Role,
		Unit:        r.Unit,
		Status:      content.Status(r.Status),
		BirthDate:   r.BirthDate,
		DeathDate:   r.DeathDate,
		Biography:   r.Biography,
		Image:       r.Image.imageRef(),
		Approved:    r.Approved == nil || *r.Approved,
		Featured:    r.Featured,
		TributeRefs: r.TributeRefs,
		UpdatedAt:   r.UpdatedAt,
	}
}

type rawTribute struct {
	ID           string    `json:"_id"`
	Author       string    `json:"author"`
	Relationship string    `json:"relationship"`
	Message      string    `json:"message"`
	Approved     bool      `json:"approved"`
	SubmittedAt  time.Time `json:"submittedAt"`
	Image        *rawImage `json:"image"`
	MemorialID   string    `json:"memorialId"`
}

type rawGuestbookEntry struct {
	ID          string    `json:"_id"`
	Author      string    `json:"author"`
	Location    string    `json:"location"`
	Message     string    `json:"message"`
	Approved    bool      `json:"approved"`
	SubmittedAt time.Time `json:"submittedAt"`
	Image       *rawImage `json:"image"`
}

type rawTimelineEvent struct {
	ID           string            `json:"_id"`
	Title        string            `json:"title"`
	Date         string            `json:"date"`
	Description  portabletext.Text `json:"description"`
	EventType    string            `json:"eventType"`
	Image        *rawImage         `json:"image"`
	MemorialID   string            `json:"memorialId"`
	MemorialName string            `json:"memorialName"`
}

type rawMedia struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MediaType    string    `json:"mediaType"`
	ImageFile    *rawImage `json:"imageFile"`
	OtherFile    *rawImage `json:"otherFile"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"_createdAt"`
	MemorialID   string    `json:"memorialId"`
	MemorialName string    `json:"memorialName"`
}

func (s *Store) memorials(ctx context.Context, query string, params map[string]any) ([]content.Memorial, error) {
	var raw []rawMemorial
	if err := s.client.Query(ctx, query, params, &raw); err != nil {
		return nil, err
	}

	out := make([]content.Memorial, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.memorial())
	}
	return out, nil
}

// FeaturedMemorials implements content.Store.
func (s *Store) FeaturedMemorials(ctx context.Context, limit int) ([]content.Memorial, error) {
	if limit <= 0 {
		limit = 6
	}
	return s.memorials(ctx, fmt.Sprintf(featuredMemorialsTemplate, limit), nil)
}

// Memorials implements content.Store. Documents created in the CMS editor
// have no approved field, which counts as approved.
func (s *Store) Memorials(ctx context.Context, approvedOnly bool) ([]content.Memorial, error) {
	if approvedOnly {
		return s.memorials(ctx, approvedMemorialsQuery, nil)
	}
	return s.memorials(ctx, allMemorialsQuery, nil)
}

// Memorial implements content.Store.
func (s *Store) Memorial(ctx context.Context, id string) (*content.Memorial, error) {
	var raw *rawMemorial
	if err := s.client.Query(ctx, memorialByIDQuery, map[string]any{"id": id}, &raw); err != nil {
		return nil, err
	}
	if raw == nil || raw.ID == "" {
		return nil, content.ErrNotFound
	}
	m := raw.memorial()
	return &m, nil
}

// ApprovedTributeMemorialIDs implements content.Store.
func (s *Store) ApprovedTributeMemorialIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.client.Query(ctx, approvedTributeRefsQuery, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ApprovedTributes implements content.Store.
func (s *Store) ApprovedTributes(ctx context.Context, memorialID string) ([]content.Tribute, error) {
	var raw []rawTribute
	if err := s.client.Query(ctx, approvedTributesForQuery, map[string]any{"id": memorialID}, &raw); err != nil {
		return nil, err
	}

	out := make([]content.Tribute, 0, len(raw))
	for _, r := range raw {
		out = append(out, content.Tribute{
			ID:           r.ID,
			Author:       r.Author,
			Relationship: r.Relationship,
			Message:      r.Message,
			MemorialID:   r.MemorialID,
			Approved:     r.Approved,
			SubmittedAt:  r.SubmittedAt,
			Image:        r.Image.imageRef(),
		})
	}
	return out, nil
}

// TimelineEvents implements content.Store.
func (s *Store) TimelineEvents(ctx context.Context) ([]content.TimelineEvent, error) {
	var raw []rawTimelineEvent
	if err := s.client.Query(ctx, timelineEventsQuery, nil, &raw); err != nil {
		return nil, err
	}

	out := make([]content.TimelineEvent, 0, len(raw))
	for _, r := range raw {
		out = append(out, content.TimelineEvent{
			ID:           r.ID,
			Title:        r.Title,
			Date:         r.Date,
			Description:  r.Description,
			EventType:    content.EventType(r.EventType),
			MemorialID:   r.MemorialID,
			MemorialName: r.MemorialName,
			Image:        r.Image.imageRef(),
		})
	}
	return out, nil
}

// Media implements content.Store.
func (s *Store) Media(ctx context.Context, filter content.MediaFilter) ([]content.MediaAsset, error) {
	conditions := []string{`_type == "media"`}
	params := map[string]any{}
	if filter.Category != "" {
		conditions = append(conditions, "category == $category")
		params["category"] = string(filter.Category)
	}
	if filter.MediaType != "" {
		conditions = append(conditions, "mediaType == $mediaType")
		params["mediaType"] = string(filter.MediaType)
	}
	query := "*[" + strings.Join(conditions, " && ") + "] | order(_createdAt desc)" + mediaProjection

	var raw []rawMedia
	if err := s.client.Query(ctx, query, params, &raw); err != nil {
		return nil, err
	}

	out := make([]content.MediaAsset, 0, len(raw))
	for _, r := range raw {
		asset := content.MediaAsset{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			MediaType:    content.MediaType(r.MediaType),
			Category:     content.Category(r.Category),
			MemorialID:   r.MemorialID,
			MemorialName: r.MemorialName,
			CreatedAt:    r.CreatedAt,
		}
		// editors may leave the hidden field populated; keep only the one
		// matching the media type
		if asset.IsImage() {
			asset.ImageFile = r.ImageFile.imageRef()
		} else {
			asset.OtherFile = r.OtherFile.fileRef()
		}
		out = append(out, asset)
	}
	return out, nil
}

// ApprovedGuestbookEntries implements content.Store.
func (s *Store) ApprovedGuestbookEntries(ctx context.Context) ([]content.GuestbookEntry, error) {
	var raw []rawGuestbookEntry
	if err := s.client.Query(ctx, approvedGuestbookQuery, nil, &raw); err != nil {
		return nil, err
	}

	out := make([]content.GuestbookEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, content.GuestbookEntry{
			ID:          r.ID,
			Author:      r.Author,
			Location:    r.Location,
			Message:     r.Message,
			Approved:    r.Approved,
			SubmittedAt: r.SubmittedAt,
			Image:       r.Image.imageRef(),
		})
	}
	return out, nil
}

func imageField(ref *content.ImageRef) map[string]any {
	return map[string]any{
		"_type": "image",
		"asset": map[string]any{"_type": "reference", "_ref": ref.AssetRef},
	}
}

func reference(id string) map[string]any {
	return map[string]any{"_type": "reference", "_ref": id}
}

// CreateMemorial implements content.Store.
func (s *Store) CreateMemorial(ctx context.Context, m *content.Memorial) (string, error) {
	doc := map[string]any{
		"_type":     "memorial",
		"name":      m.Name,
		"role":      m.Role,
		"unit":      m.Unit,
		"status":    string(m.Status),
		"biography": m.Biography,
		"approved":  m.Approved,
		"featured":  m.Featured,
	}
	if m.BirthDate != "" {
		doc["birthDate"] = m.BirthDate
	}
	if m.DeathDate != "" {
		doc["deathDate"] = m.DeathDate
	}
	if m.Image != nil && m.Image.AssetRef != "" {
		doc["image"] = imageField(m.Image)
	}
	return s.client.Create(ctx, doc)
}

// CreateTribute implements content.Store.
func (s *Store) CreateTribute(ctx context.Context, t *content.Tribute) (string, error) {
	doc := map[string]any{
		"_type":        "tribute",
		"author":       t.Author,
		"relationship": t.Relationship,
		"message":      t.Message,
		"approved":     t.Approved,
		"submittedAt":  s.submittedAt(t.SubmittedAt),
	}
	if t.MemorialID != "" {
		doc["memorial"] = reference(t.MemorialID)
	}
	if t.Image != nil && t.Image.AssetRef != "" {
		doc["image"] = imageField(t.Image)
	}
	return s.client.Create(ctx, doc)
}

// CreateGuestbookEntry implements content.Store.
func (s *Store) CreateGuestbookEntry(ctx context.Context, e *content.GuestbookEntry) (string, error) {
	doc := map[string]any{
		"_type":       "guestbook",
		"author":      e.Author,
		"location":    e.Location,
		"message":     e.Message,
		"approved":    e.Approved,
		"submittedAt": s.submittedAt(e.SubmittedAt),
	}
	if e.Image != nil && e.Image.AssetRef != "" {
		doc["image"] = imageField(e.Image)
	}
	return s.client.Create(ctx, doc)
}

// UploadImage implements content.Store.
func (s *Store) UploadImage(ctx context.Context, upload content.ImageUpload) (*content.ImageRef, error) {
	asset, err := s.client.UploadImage(ctx, upload.Filename, upload.ContentType, upload.Data)
	if err != nil {
		return nil, err
	}
	return &content.ImageRef{AssetRef: asset.ID, URL: asset.URL}, nil
}

func (s *Store) submittedAt(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
