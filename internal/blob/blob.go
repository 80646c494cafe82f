// Package blob stores uploaded image bytes for content backends that do not
// own an asset service of their own.
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage writes an object and returns its public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// NewKey builds a date partitioned object key with the given extension,
// e.g. images/2024/5/12/<uuid>.jpg.
func NewKey(prefix, ext string) (string, string) {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	d := time.Now().UTC()
	ext = strings.TrimPrefix(ext, ".")
	key := fmt.Sprintf("%s/%d/%d/%d/%s.%s", prefix, d.Year(), d.Month(), d.Day(), id, ext)
	return id, key
}

// PublicURL joins a base URL and an object key.
func PublicURL(base, key string) string {
	if base == "" {
		return "/" + strings.TrimPrefix(key, "/")
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(path.Clean("/"+key), "/")
}
