package server

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"photoalbum/internal/models"
	"photoalbum/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "albumId" -> "album ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// mapServiceError picks the HTTP status for an error returned by a service.
func mapServiceError(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation, models.CodePasswordMismatch, models.CodeNoFileProvided:
		return fiber.StatusBadRequest
	case models.CodeDuplicateUsername, models.CodeDuplicateEmail:
		return fiber.StatusConflict
	case models.CodeInvalidCredentials, models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// render adds what every page needs (identity, flashes, CSRF token) to data
// and renders the named template inside the layout.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	identity, _ := s.sessions.Current(c)
	data["Identity"] = identity
	data["Flashes"] = s.sessions.Flashes(c)
	data["CSRF"] = csrfToken(c)
	return c.Render(name, data)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfLocal).(string)
	return token
}

// wantsJSON reports whether the client prefers JSON over an HTML page.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// handleError is the single top-level handler for errors that escape route
// handlers. Details of unexpected errors are only shown in development.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)

	message := "Internal server error"
	var appErr *models.AppError
	var fe *fiber.Error
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case errors.As(err, &fe):
		message = fe.Message
	}

	ctx := c.UserContext()
	if status >= fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(ctx, "request error",
			slog.Int("status", status),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	if wantsJSON(c) {
		return models.RespondWithError(c, status, err)
	}

	details := ""
	if s.config.IsDevelopment() && status >= fiber.StatusInternalServerError {
		details = err.Error()
	}

	c.Status(status)
	if renderErr := s.render(c, "error", fiber.Map{
		"Status":  status,
		"Message": message,
		"Details": details,
	}); renderErr != nil {
		observability.Logger.ErrorContext(ctx, "failed to render error page", slog.String("error", renderErr.Error()))
		return c.Status(status).SendString(message)
	}
	return nil
}

// NotFound renders the 404 page for unmatched routes.
func (s *Server) NotFound(c *fiber.Ctx) error {
	if wantsJSON(c) {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Route", c.Path()))
	}
	c.Status(fiber.StatusNotFound)
	return s.render(c, "404", fiber.Map{"Path": c.Path()})
}
