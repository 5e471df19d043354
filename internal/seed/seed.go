// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"photoalbum/internal/models"
	"photoalbum/internal/observability"

	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configures the seeder.
type Options struct {
	NumUsers       int
	AlbumsPerUser  int
	PhotosPerAlbum int
	Clean          bool
	Password       string
	BcryptCost     int
	// RandSeed makes the generated data reproducible when non-zero.
	RandSeed int64
}

// Summary reports what Seed created.
type Summary struct {
	Users  int
	Albums int
	Photos int
}

// Seed populates the database with demo users, albums and photos.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	db = db.WithContext(ctx)

	if opts.Clean {
		if err := ClearAll(db); err != nil {
			return sum, err
		}
	}

	f, err := NewFactory(db, opts.Password, opts.BcryptCost, opts.RandSeed)
	if err != nil {
		return sum, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		f.db = tx
		for i := 0; i < opts.NumUsers; i++ {
			user, err := f.CreateUser()
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			sum.Users++
			for j := 0; j < opts.AlbumsPerUser; j++ {
				album, err := f.CreateAlbum(user)
				if err != nil {
					return fmt.Errorf("create album: %w", err)
				}
				sum.Albums++
				photos, err := f.CreatePhotos(album, opts.PhotosPerAlbum)
				if err != nil {
					return fmt.Errorf("create photos: %w", err)
				}
				sum.Photos += len(photos)
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	observability.Logger.InfoContext(ctx, "database seeded",
		slog.Int("users", sum.Users),
		slog.Int("albums", sum.Albums),
		slog.Int("photos", sum.Photos),
	)
	return sum, nil
}

// ClearAll removes every photo, album and user, children first.
func ClearAll(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []interface{}{&models.Photo{}, &models.Album{}, &models.User{}} {
		if err := tx.Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}
