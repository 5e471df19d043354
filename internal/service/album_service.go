package service

import (
	"context"
	"log/slog"
	"strings"

	"photoalbum/internal/cache"
	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/repository"
	"photoalbum/internal/storage"
	"photoalbum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CreateAlbumInput struct {
	Title   string
	OwnerID uint
}

type DeleteAlbumInput struct {
	AlbumID     uint
	RequesterID uint
}

type CreatePhotoInput struct {
	AlbumID    uint
	OwnerID    uint
	URL        string
	StorageKey string
}

type AlbumService struct {
	albumRepo repository.AlbumRepository
	photoRepo repository.PhotoRepository
	userRepo  repository.UserRepository
	store     storage.Store
}

// NewAlbumService wires the album use cases. store may be nil, in which case
// deleting an album leaves its stored objects in place.
func NewAlbumService(
	albumRepo repository.AlbumRepository,
	photoRepo repository.PhotoRepository,
	userRepo repository.UserRepository,
	store storage.Store,
) *AlbumService {
	return &AlbumService{
		albumRepo: albumRepo,
		photoRepo: photoRepo,
		userRepo:  userRepo,
		store:     store,
	}
}

func (s *AlbumService) CreateAlbum(ctx context.Context, in CreateAlbumInput) (*models.Album, error) {
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateAlbumTitle(title); err != nil {
		return nil, models.NewFieldValidationError([]models.FieldError{{Field: "title", Message: err.Error()}})
	}
	if _, err := s.userRepo.GetByID(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	album := &models.Album{Title: title, UserID: in.OwnerID}
	if err := s.albumRepo.Create(ctx, album); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.AlbumPreviewKey, cache.UserKey(in.OwnerID))
	return album, nil
}

// DeleteAlbum removes an album owned by the requester together with its
// photos. Stored objects are removed afterwards; failures there are logged
// and do not undo the delete.
func (s *AlbumService) DeleteAlbum(ctx context.Context, in DeleteAlbumInput) (err error) {
	ctx, finish := observability.StartSpan(ctx, "album.delete",
		attribute.Int64("album.id", int64(in.AlbumID)))
	defer func() { finish(err) }()

	album, err := s.albumRepo.GetByID(ctx, in.AlbumID)
	if err != nil {
		return err
	}
	if album.UserID != in.RequesterID {
		return models.NewForbiddenError("You can only delete your own albums")
	}

	photos, err := s.albumRepo.Delete(ctx, album.ID)
	if err != nil {
		return err
	}
	cache.InvalidateAlbum(ctx, album.ID)
	cache.Invalidate(ctx, cache.UserKey(album.UserID))

	if s.store == nil {
		return nil
	}
	for _, p := range photos {
		if p.StorageKey == "" {
			continue
		}
		if delErr := s.store.Delete(ctx, p.StorageKey); delErr != nil {
			observability.Logger.WarnContext(ctx, "failed to remove stored photo",
				slog.Uint64("photo_id", uint64(p.ID)),
				slog.String("key", p.StorageKey),
				slog.String("error", delErr.Error()),
			)
		}
	}
	return nil
}

// ListAlbums returns every album with a preview of at most
// models.PreviewPhotoLimit photos each.
func (s *AlbumService) ListAlbums(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	err := cache.Aside(ctx, cache.AlbumPreviewKey, &albums, cache.AlbumPreviewTTL, func() error {
		var err error
		albums, err = s.albumRepo.ListWithPreview(ctx, models.PreviewPhotoLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return albums, nil
}

// GetAlbum returns the album with all of its photos. The cached copy does
// not carry storage keys.
func (s *AlbumService) GetAlbum(ctx context.Context, id uint) (*models.Album, error) {
	var album *models.Album
	err := cache.Aside(ctx, cache.AlbumKey(id), &album, cache.AlbumTTL, func() error {
		var err error
		album, err = s.albumRepo.GetWithPhotos(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return album, nil
}

// CreatePhoto attaches an already stored object to an album of the owner.
func (s *AlbumService) CreatePhoto(ctx context.Context, in CreatePhotoInput) (photo *models.Photo, err error) {
	ctx, finish := observability.StartSpan(ctx, "photo.create",
		attribute.Int64("album.id", int64(in.AlbumID)))
	defer func() { finish(err) }()

	if strings.TrimSpace(in.URL) == "" {
		return nil, models.NewValidationError("Photo URL is required")
	}

	album, err := s.albumRepo.GetByID(ctx, in.AlbumID)
	if err != nil {
		return nil, err
	}
	if album.UserID != in.OwnerID {
		return nil, models.NewForbiddenError("You can only add photos to your own albums")
	}

	photo = &models.Photo{
		URL:        in.URL,
		StorageKey: in.StorageKey,
		AlbumID:    album.ID,
		UserID:     in.OwnerID,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}

	cache.InvalidateAlbum(ctx, album.ID)
	return photo, nil
}
