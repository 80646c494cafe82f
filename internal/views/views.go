// Package views shapes content documents for display: asset references
// become URLs, dates become year ranges, rich text becomes HTML.
package views

import (
	"sort"
	"strings"
	"time"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/countdown"
)

// URLResolver resolves asset references. assets.Builder implements it.
type URLResolver interface {
	ImageURL(ref *content.ImageRef) string
	MediaURL(asset content.MediaAsset) string
}

// Presenter converts documents to display shapes.
type Presenter struct {
	urls URLResolver
	now  func() time.Time
}

func NewPresenter(urls URLResolver) *Presenter {
	return &Presenter{urls: urls, now: time.Now}
}

type MemorialCard struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Role         string         `json:"role,omitempty"`
	Unit         string         `json:"unit,omitempty"`
	Status       content.Status `json:"status"`
	Years        string         `json:"years"`
	ImageURL     string         `json:"imageUrl,omitempty"`
	TributeCount int            `json:"tributeCount"`
	Featured     bool           `json:"featured"`
}

type TributeItem struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Relationship string    `json:"relationship"`
	Message      string    `json:"message"`
	SubmittedAt  time.Time `json:"submittedAt"`
	ImageURL     string    `json:"imageUrl,omitempty"`
}

type MemorialDetail struct {
	MemorialCard
	BirthDate string        `json:"birthDate,omitempty"`
	DeathDate string        `json:"deathDate,omitempty"`
	Biography string        `json:"biography,omitempty"`
	Tributes  []TributeItem `json:"tributes"`

	// NextAnniversary is the countdown target on the memorial page.
	NextAnniversary *time.Time `json:"nextAnniversary,omitempty"`
}

type MediaItem struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	MediaType    content.MediaType `json:"mediaType"`
	Category     content.Category  `json:"category"`
	FileURL      string            `json:"fileUrl"`
	MemorialID   string            `json:"memorialId,omitempty"`
	MemorialName string            `json:"memorialName,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type TimelineItem struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Date            string            `json:"date"`
	EventType       content.EventType `json:"eventType"`
	DescriptionText string            `json:"descriptionText"`
	DescriptionHTML string            `json:"descriptionHtml"`
	MemorialID      string            `json:"memorialId,omitempty"`
	MemorialName    string            `json:"memorialName,omitempty"`
	ImageURL        string            `json:"imageUrl,omitempty"`
}

type GuestbookItem struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Location     string    `json:"location,omitempty"`
	Relationship string    `json:"relationship,omitempty"`
	Message      string    `json:"message"`
	SubmittedAt  time.Time `json:"submittedAt"`
	ImageURL     string    `json:"imageUrl,omitempty"`
}

// Anniversary is an upcoming remembrance date of a memorial.
type Anniversary struct {
	MemorialID string    `json:"memorialId"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	DeathDate  string    `json:"deathDate"`
}

// Years formats the life span of a memorial from YYYY-MM-DD dates.
func Years(birthDate, deathDate string) string {
	birth, death := year(birthDate), year(deathDate)
	switch {
	case birth != "" && death != "":
		return birth + " - " + death
	case death != "":
		return "Died: " + death
	case birth != "":
		return birth + " - "
	default:
		return "Unknown years"
	}
}

func year(date string) string {
	y, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	return y
}

func (p *Presenter) MemorialCard(m content.Memorial) MemorialCard {
	return MemorialCard{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Unit:         m.Unit,
		Status:       m.Status,
		Years:        Years(m.BirthDate, m.DeathDate),
		ImageURL:     p.urls.ImageURL(m.Image),
		TributeCount: m.TributeCount,
		Featured:     m.Featured,
	}
}

func (p *Presenter) MemorialCards(memorials []content.Memorial) []MemorialCard {
	out := make([]MemorialCard, 0, len(memorials))
	for _, m := range memorials {
		out = append(out, p.MemorialCard(m))
	}
	return out
}

func (p *Presenter) MemorialDetail(m content.Memorial) MemorialDetail {
	detail := MemorialDetail{
		MemorialCard: p.MemorialCard(m),
		BirthDate:    m.BirthDate,
		DeathDate:    m.DeathDate,
		Biography:    m.Biography,
		Tributes:     make([]TributeItem, 0, len(m.Tributes)),
	}
	for _, t := range m.Tributes {
		detail.Tributes = append(detail.Tributes, TributeItem{
			ID:           t.ID,
			Author:       t.Author,
			Relationship: t.Relationship,
			Message:      t.Message,
			SubmittedAt:  t.SubmittedAt,
			ImageURL:     p.urls.ImageURL(t.Image),
		})
	}
	if death, err := time.Parse(time.DateOnly, m.DeathDate); err == nil {
		next := countdown.NextAnniversary(death, p.now().UTC())
		detail.NextAnniversary = &next
	}
	return detail
}

func (p *Presenter) MediaItem(a content.MediaAsset) MediaItem {
	return MediaItem{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		MediaType:    a.MediaType,
		Category:     a.Category,
		FileURL:      p.urls.MediaURL(a),
		MemorialID:   a.MemorialID,
		MemorialName: a.MemorialName,
		CreatedAt:    a.CreatedAt,
	}
}

func (p *Presenter) MediaItems(assets []content.MediaAsset) []MediaItem {
	out := make([]MediaItem, 0, len(assets))
	for _, a := range assets {
		out = append(out, p.MediaItem(a))
	}
	return out
}

func (p *Presenter) TimelineItems(events []content.TimelineEvent) []TimelineItem {
	out := make([]TimelineItem, 0, len(events))
	for _, e := range events {
		out = append(out, TimelineItem{
			ID:              e.ID,
			Title:           e.Title,
			Date:            e.Date,
			EventType:       e.EventType,
			DescriptionText: e.Description.PlainText(),
			DescriptionHTML: e.Description.HTML(),
			MemorialID:      e.MemorialID,
			MemorialName:    e.MemorialName,
			ImageURL:        p.urls.ImageURL(e.Image),
		})
	}
	return out
}

func (p *Presenter) GuestbookItems(entries []content.GuestbookEntry) []GuestbookItem {
	out := make([]GuestbookItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, GuestbookItem{
			ID:           e.ID,
			Author:       e.Author,
			Location:     e.Location,
			Relationship: e.Relationship,
			Message:      e.Message,
			SubmittedAt:  e.SubmittedAt,
			ImageURL:     p.urls.ImageURL(e.Image),
		})
	}
	return out
}

// UpcomingAnniversaries returns the next n death anniversaries among the
// memorials, soonest first. Memorials without a death date are skipped.
func (p *Presenter) UpcomingAnniversaries(memorials []content.Memorial, n int) []Anniversary {
	now := p.now().UTC()

	out := make([]Anniversary, 0)
	for _, m := range memorials {
		death, err := time.Parse(time.DateOnly, m.DeathDate)
		if err != nil {
			continue
		}
		out = append(out, Anniversary{
			MemorialID: m.ID,
			Name:       m.Name,
			Date:       countdown.NextAnniversary(death, now),
			DeathDate:  m.DeathDate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// NavItem is one entry of the site navigation.
type NavItem struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// Navigation returns the site navigation with the entry matching
// currentPath marked active. Home only matches exactly.
func Navigation(currentPath string) []NavItem {
	items := []NavItem{
		{Label: "Home", Href: "/"},
		{Label: "Wall of Honour", Href: "/wall"},
		{Label: "Timeline", Href: "/timeline"},
		{Label: "Gallery", Href: "/gallery"},
		{Label: "Guestbook", Href: "/guestbook"},
	}
	for i := range items {
		if items[i].Href == "/" {
			items[i].Active = currentPath == "/"
		} else {
			items[i].Active = strings.HasPrefix(currentPath, items[i].Href)
		}
	}
	return items
}
