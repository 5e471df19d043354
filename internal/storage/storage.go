// Package storage persists uploaded photo bytes and maps them to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"photoalbum/internal/config"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("object not found")

// Store writes objects under caller-chosen keys.
type Store interface {
	// Put stores size bytes from r under key and returns the public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// NewStoreFromConfig creates a Store implementation based on UPLOAD_BACKEND.
func NewStoreFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.UploadBackend {
	case "local", "":
		if cfg.UploadDir == "" {
			return nil, fmt.Errorf("local upload backend requires UPLOAD_DIR to be set")
		}
		return NewLocalStore(cfg.UploadDir, LocalPublicPrefix)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown upload backend: %s", cfg.UploadBackend)
	}
}
