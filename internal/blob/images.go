package blob

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"io.winapps.thankasoldier/internal/content"
)

// PutImage stores an uploaded image and returns a reference in the same
// image-<id>-<ext> shape the CMS issues, with the public URL attached.
func PutImage(ctx context.Context, storage Storage, upload content.ImageUpload) (*content.ImageRef, error) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(upload.Data).String()
	}

	ext := "bin"
	if mt := mimetype.Lookup(baseType(contentType)); mt != nil && mt.Extension() != "" {
		ext = strings.TrimPrefix(mt.Extension(), ".")
	}

	id, key := NewKey("images", ext)
	url, err := storage.Put(ctx, key, contentType, upload.Data)
	if err != nil {
		return nil, err
	}

	return &content.ImageRef{AssetRef: "image-" + id + "-" + ext, URL: url}, nil
}

func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(base)
}
