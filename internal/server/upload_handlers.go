package server

import (
	"context"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadResponse is the body of a successful POST /upload.
type UploadResponse struct {
	URL     string `json:"url"`
	PhotoID uint   `json:"photoId,omitempty"`
}

// Upload handles POST /upload. With an albumId form field the stored file is
// also recorded as a photo of that album, which requires a session.
func (s *Server) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var albumID uint
	if raw := strings.TrimSpace(c.FormValue("albumId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid album ID"))
		}
		albumID = uint(id)
	}

	var ownerID uint
	if albumID != 0 {
		identity, ok := s.sessions.Current(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("You must log in to add photos to an album"))
		}
		ownerID = identity.ID
	}

	var fh *multipart.FileHeader
	if f, err := c.FormFile("file"); err == nil {
		fh = f
	}

	result, err := s.ingest(ctx, fh)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if albumID == 0 {
		return c.JSON(UploadResponse{URL: result.URL})
	}

	photo, err := s.albumService.CreatePhoto(ctx, service.CreatePhotoInput{
		AlbumID:    albumID,
		OwnerID:    ownerID,
		URL:        result.URL,
		StorageKey: result.Key,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, result.Key); delErr != nil {
			observability.Logger.WarnContext(ctx, "failed to remove orphaned upload",
				slog.String("key", result.Key),
				slog.String("error", delErr.Error()),
			)
		}
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(UploadResponse{URL: result.URL, PhotoID: photo.ID})
}

// ingest stores the uploaded file. The file handle is closed before it
// returns, whatever the outcome.
func (s *Server) ingest(ctx context.Context, fh *multipart.FileHeader) (*service.UploadResult, error) {
	if fh == nil {
		return s.uploadService.Ingest(ctx, service.UploadInput{})
	}

	src, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	return s.uploadService.Ingest(ctx, service.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      src,
	})
}
