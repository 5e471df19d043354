// Package session binds authenticated identities to server-side sessions and
// carries one-shot flash messages between redirects.
package session

import (
	"errors"
	"log/slog"
	"time"

	"photoalbum/internal/config"
	"photoalbum/internal/models"
	"photoalbum/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	// CookieName is the session id cookie.
	CookieName = "album_session"
	// RememberMeCookie pre-fills the login form. It never authenticates.
	RememberMeCookie = "username"

	keyUserID   = "user_id"
	keyUsername = "username"
	keyEmail    = "email"
)

// Flash kinds exposed to templates.
const (
	FlashSuccess = "success_msg"
	FlashError   = "error_msg"
)

var errSessionUnavailable = errors.New("session storage unavailable")

// Flashes holds the messages queued for the next rendered page.
type Flashes struct {
	Success []string
	Error   []string
}

// Manager owns the session store and the remember-me cookie.
type Manager struct {
	store            *session.Store
	rememberMeMaxAge time.Duration
	secureCookies    bool
}

// NewManager builds a Manager over storage. A nil storage falls back to
// fiber's in-process memory storage.
func NewManager(storage fiber.Storage, cfg *config.Config) *Manager {
	secure := cfg.IsProduction()
	return &Manager{
		store: session.New(session.Config{
			Expiration:     cfg.SessionTTL(),
			Storage:        storage,
			KeyLookup:      "cookie:" + CookieName,
			CookieHTTPOnly: true,
			CookieSecure:   secure,
			CookieSameSite: "Lax",
		}),
		rememberMeMaxAge: cfg.RememberMeMaxAge(),
		secureCookies:    secure,
	}
}

type requestSession struct {
	sess  *session.Session
	dirty bool
}

const localsKey = "album.session"

// Middleware loads the session once per request and saves it after the
// handler chain when something changed. Manager methods need it mounted.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rs := m.load(c)
		err := c.Next()
		if rs.sess != nil && rs.dirty {
			if saveErr := rs.sess.Save(); saveErr != nil {
				observability.Logger.ErrorContext(c.UserContext(), "failed to save session", slog.String("error", saveErr.Error()))
				if err == nil {
					err = models.NewInternalError(saveErr)
				}
			}
			rs.sess = nil
		}
		return err
	}
}

func (m *Manager) load(c *fiber.Ctx) *requestSession {
	if rs, ok := c.Locals(localsKey).(*requestSession); ok {
		return rs
	}
	rs := &requestSession{}
	sess, err := m.store.Get(c)
	if err != nil {
		observability.Logger.WarnContext(c.UserContext(), "session lookup failed", slog.String("error", err.Error()))
	} else {
		rs.sess = sess
	}
	c.Locals(localsKey, rs)
	return rs
}

// Login binds identity to a new session. The session id is regenerated so an
// id planted before login is never promoted to an authenticated one.
func (m *Manager) Login(c *fiber.Ctx, identity *models.Identity, rememberMe bool) error {
	rs := m.load(c)
	if rs.sess == nil {
		return models.NewInternalError(errSessionUnavailable)
	}
	if err := rs.sess.Regenerate(); err != nil {
		return models.NewInternalError(err)
	}

	rs.sess.Set(keyUserID, identity.ID)
	rs.sess.Set(keyUsername, identity.Username)
	rs.sess.Set(keyEmail, identity.Email)
	rs.dirty = true

	if rememberMe {
		c.Cookie(&fiber.Cookie{
			Name:     RememberMeCookie,
			Value:    identity.Username,
			Path:     "/",
			MaxAge:   int(m.rememberMeMaxAge.Seconds()),
			Expires:  time.Now().Add(m.rememberMeMaxAge),
			Secure:   m.secureCookies,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return nil
}

// Logout destroys the server-side session and expires its cookie. Later
// flashes in the same request go to a brand new session.
func (m *Manager) Logout(c *fiber.Ctx) error {
	rs := m.load(c)
	if rs.sess == nil {
		return models.NewSessionDestroyError(errSessionUnavailable)
	}
	if err := rs.sess.Destroy(); err != nil {
		return models.NewSessionDestroyError(err)
	}
	if err := rs.sess.Regenerate(); err != nil {
		return models.NewSessionDestroyError(err)
	}
	rs.dirty = false
	return nil
}

// Current returns the identity bound to the request's session, if any.
func (m *Manager) Current(c *fiber.Ctx) (*models.Identity, bool) {
	rs := m.load(c)
	if rs.sess == nil {
		return nil, false
	}

	id, ok := rs.sess.Get(keyUserID).(uint)
	if !ok || id == 0 {
		return nil, false
	}
	username, _ := rs.sess.Get(keyUsername).(string)
	email, _ := rs.sess.Get(keyEmail).(string)
	return &models.Identity{ID: id, Username: username, Email: email}, true
}

// AddFlash queues msg under kind for the next page render.
func (m *Manager) AddFlash(c *fiber.Ctx, kind, msg string) {
	rs := m.load(c)
	if rs.sess == nil {
		return
	}
	existing, _ := rs.sess.Get(kind).([]string)
	rs.sess.Set(kind, append(existing, msg))
	rs.dirty = true
}

// Flashes returns and clears the queued messages.
func (m *Manager) Flashes(c *fiber.Ctx) Flashes {
	rs := m.load(c)
	if rs.sess == nil {
		return Flashes{}
	}

	success, _ := rs.sess.Get(FlashSuccess).([]string)
	failure, _ := rs.sess.Get(FlashError).([]string)
	if len(success) == 0 && len(failure) == 0 {
		return Flashes{}
	}

	rs.sess.Delete(FlashSuccess)
	rs.sess.Delete(FlashError)
	rs.dirty = true
	return Flashes{Success: success, Error: failure}
}

// RememberedUsername returns the remember-me cookie value for form pre-fill.
func (m *Manager) RememberedUsername(c *fiber.Ctx) string {
	return c.Cookies(RememberMeCookie)
}
