package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"photoalbum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"albumId", "album ID"},
		{"photoAlbumId", "photo album ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/items/12", http.StatusOK},
		{"/items/0", http.StatusBadRequest},
		{"/items/-3", http.StatusBadRequest},
		{"/items/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.NewValidationError("x"), fiber.StatusBadRequest},
		{models.NewPasswordMismatchError(), fiber.StatusBadRequest},
		{models.NewNoFileProvidedError(), fiber.StatusBadRequest},
		{models.NewDuplicateUsernameError(), fiber.StatusConflict},
		{models.NewDuplicateEmailError(), fiber.StatusConflict},
		{models.NewInvalidCredentialsError(), fiber.StatusUnauthorized},
		{models.NewUnauthorizedError("x"), fiber.StatusUnauthorized},
		{models.NewForbiddenError("x"), fiber.StatusForbidden},
		{models.NewNotFoundError("Album", 1), fiber.StatusNotFound},
		{models.NewStorageWriteError(errors.New("disk")), fiber.StatusInternalServerError},
		{models.NewSessionDestroyError(errors.New("redis")), fiber.StatusInternalServerError},
		{fiber.NewError(fiber.StatusForbidden, "csrf"), fiber.StatusForbidden},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, mapServiceError(tt.err))
		})
	}
}

func TestCookieKeyIsValidAESKey(t *testing.T) {
	key := cookieKey("some secret")
	assert.Len(t, key, 44)
	assert.Equal(t, key, cookieKey("some secret"))
	assert.NotEqual(t, key, cookieKey("other secret"))
}
