package repository

import (
	"context"
	"testing"

	"photoalbum/internal/database"
	"photoalbum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a postgres-dialect GORM handle backed by sqlmock, for
// asserting SQL shape and error translation.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLite returns a migrated in-memory database. A single connection keeps
// every query on the same memory database.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createAlbum(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Album {
	t.Helper()
	album := &models.Album{Title: title, UserID: owner.ID}
	require.NoError(t, NewAlbumRepository(db).Create(context.Background(), album))
	return album
}

func addPhotos(t *testing.T, db *gorm.DB, album *models.Album, n int) []models.Photo {
	t.Helper()
	repo := NewPhotoRepository(db)
	photos := make([]models.Photo, 0, n)
	for i := 0; i < n; i++ {
		photo := models.Photo{
			URL:        "/uploads/photo.jpg",
			StorageKey: "photo.jpg",
			AlbumID:    album.ID,
			UserID:     album.UserID,
		}
		require.NoError(t, repo.Create(context.Background(), &photo))
		photos = append(photos, photo)
	}
	return photos
}
