package repository

import (
	"context"

	"photoalbum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PhotoRepository defines persistence operations for photos.
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	ListByAlbum(ctx context.Context, albumID uint) ([]models.Photo, error)
}

type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository returns a new PhotoRepository implementation.
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create attaches the photo to its album. The album is locked in the same
// transaction so a concurrent album delete cannot leave an orphan behind.
func (r *photoRepository) Create(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var album models.Album
		if err := lockForUpdate(tx).Select("id").First(&album, photo.AlbumID).Error; err != nil {
			return notFoundOr(err, "Album", photo.AlbumID)
		}
		if err := tx.Create(photo).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *photoRepository) ListByAlbum(ctx context.Context, albumID uint) ([]models.Photo, error) {
	var photos []models.Photo
	if err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("id ASC").
		Find(&photos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return photos, nil
}

// lockForUpdate adds FOR UPDATE where the dialect supports row locks.
// SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
