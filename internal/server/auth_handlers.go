package server

import (
	"errors"

	"photoalbum/internal/models"
	"photoalbum/internal/service"
	"photoalbum/internal/session"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the login form.
type LoginRequest struct {
	Username   string `form:"username" json:"username"`
	Password   string `form:"password" json:"password"`
	RememberMe string `form:"remember" json:"remember"`
}

func (r LoginRequest) remember() bool {
	switch r.RememberMe {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// ShowLogin handles GET /login
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	return s.render(c, "login", fiber.Map{
		"Username": s.sessions.RememberedUsername(c),
	})
}

// Login handles POST /login. The password check finishes before a session is
// created; any credential failure flashes the same message.
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		s.sessions.AddFlash(c, session.FlashError, "Invalid login request")
		return c.Redirect("/login", fiber.StatusFound)
	}

	identity, err := s.authService.Verify(c.UserContext(), req.Username, req.Password)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || mapServiceError(err) >= fiber.StatusInternalServerError {
			return err
		}
		s.sessions.AddFlash(c, session.FlashError, appErr.Message)
		return c.Redirect("/login", fiber.StatusFound)
	}

	if err := s.sessions.Login(c, identity, req.remember()); err != nil {
		return err
	}
	s.sessions.AddFlash(c, session.FlashSuccess, "You are now logged in.")
	return c.Redirect("/", fiber.StatusFound)
}

// ShowRegister handles GET /register
func (s *Server) ShowRegister(c *fiber.Ctx) error {
	return s.render(c, "register", nil)
}

// Register handles POST /register. Field errors answer 400 with the list of
// problems; duplicates and a mismatched confirmation go back to the form.
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	switch {
	case err == nil:
		s.sessions.AddFlash(c, session.FlashSuccess, "You are now registered and can log in.")
		return c.Redirect("/login", fiber.StatusFound)
	case models.HasCode(err, models.CodeValidation):
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	case models.HasCode(err, models.CodePasswordMismatch),
		models.HasCode(err, models.CodeDuplicateUsername),
		models.HasCode(err, models.CodeDuplicateEmail):
		var appErr *models.AppError
		errors.As(err, &appErr)
		s.sessions.AddFlash(c, session.FlashError, appErr.Message)
		return c.Redirect("/register", fiber.StatusFound)
	default:
		return err
	}
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if _, ok := s.sessions.Current(c); !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	if err := s.sessions.Logout(c); err != nil {
		return err
	}
	s.sessions.AddFlash(c, session.FlashSuccess, "You are logged out.")
	return c.Redirect("/login", fiber.StatusFound)
}
