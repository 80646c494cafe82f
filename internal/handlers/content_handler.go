package handlers

import (
	"context"

	"go.uber.org/zap"

	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/queries"
	"io.winapps.thankasoldier/internal/views"
)

// ContentReader is the fail-soft read side. queries.Service implements it.
type ContentReader interface {
	FeaturedMemorials(ctx context.Context) []content.Memorial
	AllMemorials(ctx context.Context) []content.Memorial
	MemorialByID(ctx context.Context, id string) *content.Memorial
	TimelinePage(ctx context.Context) queries.TimelinePage
	MediaByCategory(ctx context.Context, category content.Category) []content.MediaAsset
	RandomMediaForWall(ctx context.Context, limit int) []content.MediaAsset
	GuestbookEntries(ctx context.Context) []content.GuestbookEntry
}

// ContentHandler serves the read endpoints in display shape.
type ContentHandler struct {
	reader    ContentReader
	presenter *views.Presenter
	logger    *zap.SugaredLogger
}

// NewContentHandler creates a new content handler
func NewContentHandler(reader ContentReader, presenter *views.Presenter, logger *zap.SugaredLogger) *ContentHandler {
	return &ContentHandler{
		reader:    reader,
		presenter: presenter,
		logger:    logger,
	}
}
