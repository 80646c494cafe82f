// Package assets turns CMS asset references into public URLs.
//
// Image references look like image-<id>-<width>x<height>-<ext> and file
// references like file-<id>-<ext>.
package assets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"io.winapps.thankasoldier/internal/content"
)

const defaultCDN = "https://cdn.sanity.io"

var ErrMalformedRef = errors.New("malformed asset reference")

// Asset is a parsed asset reference.
type Asset struct {
	Kind   string
	ID     string
	Width  int
	Height int
	Ext    string
}

// Filename returns the CDN file name of the asset.
func (a Asset) Filename() string {
	if a.Width > 0 && a.Height > 0 {
		return fmt.Sprintf("%s-%dx%d.%s", a.ID, a.Width, a.Height, a.Ext)
	}
	return a.ID + "." + a.Ext
}

// ParseRef parses an image or file asset reference.
func ParseRef(ref string) (Asset, error) {
	parts := strings.Split(ref, "-")
	if len(parts) < 3 {
		return Asset{}, fmt.Errorf("%w: %q", ErrMalformedRef, ref)
	}

	asset := Asset{Kind: parts[0], Ext: parts[len(parts)-1]}
	if asset.Kind != "image" && asset.Kind != "file" {
		return Asset{}, fmt.Errorf("%w: %q", ErrMalformedRef, ref)
	}

	middle := parts[1 : len(parts)-1]
	if asset.Kind == "image" && len(middle) > 1 {
		if w, h, ok := parseDimensions(middle[len(middle)-1]); ok {
			asset.Width, asset.Height = w, h
			middle = middle[:len(middle)-1]
		}
	}

	asset.ID = strings.Join(middle, "-")
	if asset.ID == "" || asset.Ext == "" {
		return Asset{}, fmt.Errorf("%w: %q", ErrMalformedRef, ref)
	}
	return asset, nil
}

func parseDimensions(s string) (int, int, bool) {
	w, h, found := strings.Cut(s, "x")
	if !found {
		return 0, 0, false
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, false
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

// Builder resolves references against a CMS project and dataset.
type Builder struct {
	ProjectID string
	Dataset   string
	CDNBase   string
}

// NewBuilder creates a Builder for the default CDN.
func NewBuilder(projectID, dataset string) Builder {
	return Builder{ProjectID: projectID, Dataset: dataset, CDNBase: defaultCDN}
}

func (b Builder) base() string {
	if b.CDNBase == "" {
		return defaultCDN
	}
	return strings.TrimRight(b.CDNBase, "/")
}

// RefURL builds the URL of a raw reference, or "" when it cannot.
func (b Builder) RefURL(ref string) string {
	if ref == "" || b.ProjectID == "" || b.Dataset == "" {
		return ""
	}
	asset, err := ParseRef(ref)
	if err != nil {
		return ""
	}

	dir := "files"
	if asset.Kind == "image" {
		dir = "images"
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", b.base(), dir, b.ProjectID, b.Dataset, asset.Filename())
}

// ImageURL prefers a URL the backend already issued, then the reference.
func (b Builder) ImageURL(ref *content.ImageRef) string {
	if ref == nil {
		return ""
	}
	if ref.URL != "" {
		return ref.URL
	}
	return b.RefURL(ref.AssetRef)
}

// FileURL prefers a URL the backend already issued, then the reference.
func (b Builder) FileURL(ref *content.FileRef) string {
	if ref == nil {
		return ""
	}
	if ref.URL != "" {
		return ref.URL
	}
	return b.RefURL(ref.AssetRef)
}

// MediaURL resolves the populated file field of a media asset.
func (b Builder) MediaURL(asset content.MediaAsset) string {
	if asset.IsImage() {
		return b.ImageURL(asset.ImageFile)
	}
	return b.FileURL(asset.OtherFile)
}
