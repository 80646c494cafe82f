package content

import (
	"time"

	"io.winapps.thankasoldier/internal/portabletext"
)

// Status classifies a memorial.
type Status string

const (
	StatusFallen    Status = "fallen"
	StatusServing   Status = "serving"
	StatusGallantry Status = "gallantry"
)

// EventType classifies a timeline event.
type EventType string

const (
	EventMilestone  EventType = "milestone"
	EventMemorial   EventType = "memorial"
	EventHistorical EventType = "historical"
)

// MediaType selects which file field of a MediaAsset is populated.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Category groups media assets in the gallery.
type Category string

const (
	CategoryMemorialPhotos      Category = "memorial-photos"
	CategoryOrganizationHistory Category = "organization-history"
	CategoryTributes            Category = "tributes"
	CategoryEvents              Category = "events"
	CategoryBackgroundMusic     Category = "background-music"
)

// ImageRef points at an image asset. URL is set when the backend already
// knows the public location; otherwise it is derived from AssetRef.
type ImageRef struct {
	AssetRef string `json:"assetRef,omitempty"`
	URL      string `json:"url,omitempty"`
}

// FileRef points at a non-image asset (audio, video).
type FileRef struct {
	AssetRef string `json:"assetRef,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Memorial is the profile of an honored individual.
type Memorial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Role      string    `json:"role,omitempty" validate:"max=100"`
	Unit      string    `json:"unit,omitempty" validate:"max=100"`
	Status    Status    `json:"status" validate:"required,oneof=fallen serving gallantry"`
	BirthDate string    `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeathDate string    `json:"deathDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Biography string    `json:"biography,omitempty" validate:"max=2000"`
	Image     *ImageRef `json:"image,omitempty"`
	Approved  bool      `json:"approved"`
	Featured  bool      `json:"featured"`

	// TributeRefs is the list of references stored on the document. It is
	// informational only; counts always come from TributeCount.
	TributeRefs []string `json:"tributeRefs,omitempty"`

	// TributeCount is the number of approved tributes referencing this
	// memorial. Set by the query layer.
	TributeCount int `json:"tributeCount"`

	// Tributes holds resolved approved tributes for detail lookups.
	Tributes []Tribute `json:"tributes,omitempty"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Tribute is a testimonial left against a memorial.
type Tribute struct {
	ID           string    `json:"id"`
	Author       string    `json:"author" validate:"required,max=100"`
	Relationship string    `json:"relationship" validate:"required,max=100"`
	Message      string    `json:"message" validate:"required,min=10,max=1000"`
	MemorialID   string    `json:"memorialId,omitempty"`
	Approved     bool      `json:"approved"`
	SubmittedAt  time.Time `json:"submittedAt"`
	Image        *ImageRef `json:"image,omitempty"`
}

// GuestbookEntry is a site-wide testimonial.
type GuestbookEntry struct {
	ID       string `json:"id"`
	Author   string `json:"author" validate:"required,max=100"`
	Location string `json:"location,omitempty" validate:"max=100"`

	// Relationship mirrors Location for display; filled on read.
	Relationship string `json:"relationship,omitempty"`

	Message     string    `json:"message" validate:"required,min=10,max=1000"`
	Approved    bool      `json:"approved"`
	SubmittedAt time.Time `json:"submittedAt"`
	Image       *ImageRef `json:"image,omitempty"`
}

// TimelineEvent is a dated entry on the organization timeline.
type TimelineEvent struct {
	ID           string            `json:"id"`
	Title        string            `json:"title" validate:"required"`
	Date         string            `json:"date" validate:"required,datetime=2006-01-02"`
	Description  portabletext.Text `json:"description"`
	EventType    EventType         `json:"eventType" validate:"required,oneof=milestone memorial historical"`
	MemorialID   string            `json:"memorialId,omitempty"`
	MemorialName string            `json:"memorialName,omitempty"`
	Image        *ImageRef         `json:"image,omitempty"`
}

// MediaAsset is a gallery item. Exactly one of ImageFile and OtherFile is
// populated, selected by MediaType.
type MediaAsset struct {
	ID           string    `json:"id"`
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description,omitempty"`
	MediaType    MediaType `json:"mediaType" validate:"required,oneof=image video audio"`
	ImageFile    *ImageRef `json:"imageFile,omitempty"`
	OtherFile    *FileRef  `json:"otherFile,omitempty"`
	Category     Category  `json:"category" validate:"required,oneof=memorial-photos organization-history tributes events background-music"`
	MemorialID   string    `json:"memorialId,omitempty"`
	MemorialName string    `json:"memorialName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsImage reports whether the asset is an image.
func (m MediaAsset) IsImage() bool {
	return m.MediaType == MediaImage
}

// FileField returns the populated file field selected by MediaType, or nil.
func (m MediaAsset) FileField() *FileRef {
	if m.IsImage() {
		if m.ImageFile == nil {
			return nil
		}
		return &FileRef{AssetRef: m.ImageFile.AssetRef, URL: m.ImageFile.URL}
	}
	return m.OtherFile
}

// MediaFilter narrows a media listing. Zero values match everything.
type MediaFilter struct {
	Category  Category
	MediaType MediaType
}

// Matches reports whether the asset passes the filter.
func (f MediaFilter) Matches(m MediaAsset) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.MediaType != "" && m.MediaType != f.MediaType {
		return false
	}
	return true
}

// ImageUpload is a binary image handed to Store.UploadImage.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
