// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"photoalbum/internal/models"

	"gorm.io/gorm"
)

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL reports SQLSTATE 23505, SQLite "UNIQUE constraint failed".
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// violatedColumn names the users column behind a unique violation. Postgres
// reports the index name, SQLite reports table.column.
func violatedColumn(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "idx_users_username"), strings.Contains(msg, "users.username"):
		return "username"
	case strings.Contains(msg, "idx_users_email"), strings.Contains(msg, "users.email"):
		return "email"
	default:
		return ""
	}
}

func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
