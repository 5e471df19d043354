package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/storage"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const DefaultUploadMaxBytes = 10 * 1024 * 1024

var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

var allowedExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

// UploadInput is one multipart file. Reader is nil when no file was sent.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadResult is where the stored object can be fetched.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"-"`
}

type UploadService struct {
	store    storage.Store
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

func NewUploadService(store storage.Store, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &UploadService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Ingest checks that the payload is an image and stores it under a fresh
// name made of the upload time, a random suffix and the original extension.
func (s *UploadService) Ingest(ctx context.Context, in UploadInput) (*UploadResult, error) {
	backend := s.store.Name()
	if in.Reader == nil {
		observability.Uploads.WithLabelValues(backend, "no_file").Inc()
		return nil, models.NewNoFileProvidedError()
	}
	if in.Size > s.maxBytes {
		observability.Uploads.WithLabelValues(backend, "too_large").Inc()
		return nil, s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(in.Reader, s.maxBytes+1))
	if err != nil {
		observability.Uploads.WithLabelValues(backend, "read_error").Inc()
		return nil, models.NewValidationError("Could not read uploaded file")
	}
	if len(data) == 0 {
		observability.Uploads.WithLabelValues(backend, "no_file").Inc()
		return nil, models.NewNoFileProvidedError()
	}
	if int64(len(data)) > s.maxBytes {
		observability.Uploads.WithLabelValues(backend, "too_large").Inc()
		return nil, s.tooLarge()
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		observability.Uploads.WithLabelValues(backend, "invalid").Inc()
		return nil, models.NewValidationError("Invalid image file")
	}
	if _, ok := formatExtensions[format]; !ok {
		observability.Uploads.WithLabelValues(backend, "invalid").Inc()
		return nil, models.NewValidationError("Unsupported image format")
	}

	key := s.objectKey(in.Filename, format)
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "image/"+format)
	if err != nil {
		observability.Uploads.WithLabelValues(backend, "storage_error").Inc()
		observability.Logger.ErrorContext(ctx, "failed to store upload",
			slog.String("key", key),
			slog.String("backend", backend),
			slog.String("error", err.Error()),
		)
		return nil, models.NewStorageWriteError(err)
	}

	observability.Uploads.WithLabelValues(backend, "success").Inc()
	observability.UploadBytes.Add(float64(len(data)))
	return &UploadResult{URL: url, Key: key}, nil
}

// objectKey keeps the client's extension when it names the detected format,
// otherwise it uses the canonical extension for that format.
func (s *UploadService) objectKey(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if allowedExtensions[ext] != format {
		ext = formatExtensions[format]
	}
	suffix := strings.ReplaceAll(s.newID(), "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), suffix, ext)
}

func (s *UploadService) tooLarge() error {
	return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
}
