// Package content defines the documents of the memorial site and the
// Store contract every content backend implements.
package content

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by single document lookups.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDocument is returned when a document violates the schema.
	ErrInvalidDocument = errors.New("invalid document")
)

// Store is the content store. Reads never return unapproved tributes or
// guestbook entries. Writes create exactly one document per call.
type Store interface {
	// FeaturedMemorials returns up to limit memorials flagged featured.
	FeaturedMemorials(ctx context.Context, limit int) ([]Memorial, error)

	// Memorials returns every memorial, or only approved ones.
	Memorials(ctx context.Context, approvedOnly bool) ([]Memorial, error)

	// Memorial returns one memorial or ErrNotFound.
	Memorial(ctx context.Context, id string) (*Memorial, error)

	// ApprovedTributeMemorialIDs returns the memorial reference of every
	// approved tribute that has one, one element per tribute.
	ApprovedTributeMemorialIDs(ctx context.Context) ([]string, error)

	// ApprovedTributes returns approved tributes referencing the memorial.
	ApprovedTributes(ctx context.Context, memorialID string) ([]Tribute, error)

	// TimelineEvents returns events ordered by date descending.
	TimelineEvents(ctx context.Context) ([]TimelineEvent, error)

	// Media returns assets matching the filter, newest first.
	Media(ctx context.Context, filter MediaFilter) ([]MediaAsset, error)

	// ApprovedGuestbookEntries returns approved entries, newest first.
	ApprovedGuestbookEntries(ctx context.Context) ([]GuestbookEntry, error)

	CreateMemorial(ctx context.Context, m *Memorial) (string, error)
	CreateTribute(ctx context.Context, t *Tribute) (string, error)
	CreateGuestbookEntry(ctx context.Context, e *GuestbookEntry) (string, error)

	// UploadImage stores a binary image asset and returns its reference.
	UploadImage(ctx context.Context, upload ImageUpload) (*ImageRef, error)
}

// StoreError wraps a backend failure with diagnostic fields that are
// surfaced to API clients.
type StoreError struct {
	Op     string
	Code   string
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts a diagnostic code from err, or "unknown".
func ErrorCode(err error) string {
	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Code != "" {
		return storeErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "unknown"
}
