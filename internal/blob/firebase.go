package blob

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/storage"
)

// Firebase stores blobs in a Firebase (Cloud Storage) bucket.
type Firebase struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewFirebase wraps a Firebase storage client. An empty bucket uses the
// app's default bucket, in which case publicBaseURL must be given.
func NewFirebase(client *storage.Client, bucket, publicBaseURL string) *Firebase {
	if publicBaseURL == "" && bucket != "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &Firebase{client: client, bucket: bucket, baseURL: publicBaseURL}
}

// Put implements Storage.
func (f *Firebase) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	handle, err := f.client.DefaultBucket()
	if f.bucket != "" {
		handle, err = f.client.Bucket(f.bucket)
	}
	if err != nil {
		return "", fmt.Errorf("failed to open bucket: %w", err)
	}

	w := handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", key, err)
	}

	return PublicURL(f.baseURL, key), nil
}
