package repository

import (
	"context"

	"photoalbum/internal/models"

	"gorm.io/gorm"
)

// AlbumRepository defines persistence operations for albums.
type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	GetByID(ctx context.Context, id uint) (*models.Album, error)
	GetWithPhotos(ctx context.Context, id uint) (*models.Album, error)
	ListWithPreview(ctx context.Context, photoLimit int) ([]models.Album, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Album, error)
	Delete(ctx context.Context, id uint) ([]models.Photo, error)
}

type albumRepository struct {
	db *gorm.DB
}

// NewAlbumRepository returns a new AlbumRepository implementation.
func NewAlbumRepository(db *gorm.DB) AlbumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Create(album).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *albumRepository) GetByID(ctx context.Context, id uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, id).Error; err != nil {
		return nil, notFoundOr(err, "Album", id)
	}
	return &album, nil
}

func (r *albumRepository) GetWithPhotos(ctx context.Context, id uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("photos.id ASC")
		}).
		First(&album, id).Error; err != nil {
		return nil, notFoundOr(err, "Album", id)
	}
	return &album, nil
}

// ListWithPreview returns every album, newest first, with at most photoLimit
// photos each. The cap is per album: photos are ranked inside their album and
// only the first photoLimit ranks are preloaded.
func (r *albumRepository) ListWithPreview(ctx context.Context, photoLimit int) ([]models.Album, error) {
	if photoLimit <= 0 {
		photoLimit = models.PreviewPhotoLimit
	}

	ranked := r.db.Model(&models.Photo{}).
		Select("id, ROW_NUMBER() OVER (PARTITION BY album_id ORDER BY id) AS rn")
	preview := r.db.Table("(?) AS ranked", ranked).
		Select("id").
		Where("rn <= ?", photoLimit)

	var albums []models.Album
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Where("photos.id IN (?)", preview).Order("photos.id ASC")
		}).
		Order("albums.id DESC").
		Find(&albums).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return albums, nil
}

func (r *albumRepository) ListByUser(ctx context.Context, userID uint) ([]models.Album, error) {
	var albums []models.Album
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&albums).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return albums, nil
}

// Delete removes the album and all of its photos in one transaction and
// returns the removed photos so their stored objects can be cleaned up.
func (r *albumRepository) Delete(ctx context.Context, id uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", id).Order("id ASC").Find(&photos).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("album_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Album{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Album", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}
