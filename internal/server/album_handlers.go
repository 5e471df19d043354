package server

import (
	"photoalbum/internal/middleware"
	"photoalbum/internal/models"
	"photoalbum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateAlbumRequest is the body of POST /album/create.
type CreateAlbumRequest struct {
	Title string `json:"title" form:"title"`
}

// ListAlbums handles GET / and GET /albums
func (s *Server) ListAlbums(c *fiber.Ctx) error {
	albums, err := s.albumService.ListAlbums(c.UserContext())
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(albums)
	}
	return s.render(c, "albums", fiber.Map{"Albums": albums})
}

// ShowAlbum handles GET /albums/:id
func (s *Server) ShowAlbum(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return s.NotFound(c)
	}
	album, err := s.albumService.GetAlbum(c.UserContext(), uint(id))
	if err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(album)
	}
	return s.render(c, "album", fiber.Map{"Album": album})
}

// CreateAlbum handles POST /album/create behind the access gate.
func (s *Server) CreateAlbum(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	var req CreateAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	album, err := s.albumService.CreateAlbum(c.UserContext(), service.CreateAlbumInput{
		Title:   req.Title,
		OwnerID: identity.ID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Album created",
		"album":   album,
	})
}

// DeleteAlbum handles DELETE /album/delete/:id. Only the owner may delete;
// the album's photos go with it.
func (s *Server) DeleteAlbum(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.albumService.DeleteAlbum(c.UserContext(), service.DeleteAlbumInput{
		AlbumID:     id,
		RequesterID: identity.ID,
	}); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"success": true})
}
