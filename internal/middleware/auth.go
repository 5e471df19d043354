// Package middleware provides request-scoped middleware for the application.
package middleware

import (
	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/session"

	"github.com/gofiber/fiber/v2"
)

// MustLogInMessage is flashed when an anonymous visitor hits a protected route.
const MustLogInMessage = "You must log in first."

const (
	identityLocal = "identity"
	userIDLocal   = "userID"
)

// SessionReader is the part of the session manager the access gate needs.
type SessionReader interface {
	Current(c *fiber.Ctx) (*models.Identity, bool)
	AddFlash(c *fiber.Ctx, kind, msg string)
}

// RequireLogin lets a request through only when its session carries an
// identity. Other cookies, including remember-me, are never consulted.
func RequireLogin(sessions SessionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := sessions.Current(c)
		if !ok {
			sessions.AddFlash(c, session.FlashError, MustLogInMessage)
			return c.Redirect("/login", fiber.StatusFound)
		}

		c.Locals(identityLocal, identity)
		c.Locals(userIDLocal, identity.ID)
		c.SetUserContext(observability.WithUserID(c.UserContext(), identity.ID))
		return c.Next()
	}
}

// IdentityFrom returns the identity admitted by RequireLogin.
func IdentityFrom(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(identityLocal).(*models.Identity)
	return identity, ok && identity != nil
}
