package database

import "photoalbum/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before children so foreign keys resolve on first migration.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Album{},
		&models.Photo{},
	}
}
