// Package server wires the HTTP surface: middleware, routes and handlers.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"photoalbum/internal/bootstrap"
	"photoalbum/internal/config"
	"photoalbum/internal/middleware"
	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/repository"
	"photoalbum/internal/service"
	"photoalbum/internal/session"
	"photoalbum/internal/storage"
	"photoalbum/internal/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	csrfCookieName = "csrf_"
	csrfFormField  = "_csrf"
	csrfLocal      = "csrf"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	store          storage.Store
	sessions       *session.Manager
	csrfStorage    fiber.Storage

	userRepo  repository.UserRepository
	albumRepo repository.AlbumRepository
	photoRepo repository.PhotoRepository

	authService   *service.AuthService
	albumService  *service.AlbumService
	uploadService *service.UploadService
}

// NewServer connects to the database, Redis and the upload backend named by
// cfg and builds the application on top of them.
func NewServer(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	srv, err := NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Store)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return srv, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case sessions and CSRF tokens live in
// process memory and rate limits follow their fail policy.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) (*Server, error) {
	if store == nil {
		return nil, errors.New("upload store is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("photo-album"),
		store:          store,
		userRepo:       repository.NewUserRepository(db),
		albumRepo:      repository.NewAlbumRepository(db),
		photoRepo:      repository.NewPhotoRepository(db),
	}

	var sessionStorage fiber.Storage
	if redisClient != nil {
		sessionStorage = session.NewRedisStorage(redisClient, "session:")
		s.csrfStorage = session.NewRedisStorage(redisClient, "csrf:")
	}
	s.sessions = session.NewManager(sessionStorage, cfg)

	models.ShowErrorDetails(cfg.IsDevelopment())

	s.authService = service.NewAuthService(s.userRepo, cfg.BcryptCost)
	s.albumService = service.NewAlbumService(s.albumRepo, s.photoRepo, s.userRepo, store)
	s.uploadService = service.NewUploadService(store, cfg.UploadMaxBytes())

	s.app = fiber.New(fiber.Config{
		AppName:      "Photo Album",
		Views:        web.NewViews(),
		ViewsLayout:  web.DefaultLayout,
		BodyLimit:    int(cfg.UploadMaxBytes()) + 1<<20,
		ErrorHandler: s.handleError,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)

	return s, nil
}

// App exposes the fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before the context middleware so the trace id reaches logs.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:" + s.config.Port
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + csrf.HeaderName,
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// The remember-me cookie must stay readable by the browser and the CSRF
	// cookie is compared verbatim against the submitted token.
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key:    cookieKey(s.config.SessionSecret),
		Except: []string{session.RememberMeCookie, csrfCookieName},
	}))

	app.Use(s.sessions.Middleware())

	app.Use(csrf.New(csrf.Config{
		Next:           isStatelessPath,
		KeyLookup:      "header:" + csrf.HeaderName,
		Extractor:      csrfFromHeaderOrForm,
		CookieName:     csrfCookieName,
		CookieSameSite: "Lax",
		CookieSecure:   s.config.IsProduction(),
		Expiration:     time.Hour,
		Storage:        s.csrfStorage,
		ContextKey:     csrfLocal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			observability.Logger.WarnContext(c.UserContext(), "csrf check failed", slog.String("error", err.Error()))
			return fiber.NewError(fiber.StatusForbidden, "Invalid or missing form token. Reload the page and try again.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/login", s.ShowLogin)
	app.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/register", s.ShowRegister)
	app.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	app.Get("/logout", s.Logout)

	app.Get("/", s.ListAlbums)
	app.Get("/albums", s.ListAlbums)
	app.Get("/albums/:id", s.ShowAlbum)

	requireLogin := middleware.RequireLogin(s.sessions)
	app.Post("/album/create", requireLogin, s.CreateAlbum)
	app.Delete("/album/delete/:id", requireLogin, s.DeleteAlbum)

	app.Post("/upload", middleware.RateLimit(s.redis, 30, time.Minute, "upload"), s.Upload)

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static(storage.LocalPublicPrefix, local.Dir(), fiber.Static{ByteRange: true})
	}
	if s.config.StaticImagesDir != "" {
		app.Static("/images", s.config.StaticImagesDir)
	}

	app.Use(s.NotFound)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database answers. Redis is optional: a
// missing client is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  s.store.Name(),
		},
		"time": time.Now(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	observability.Logger.Info("server starting", slog.String("port", s.config.Port), slog.String("env", s.config.Env))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}

// cookieKey derives the 32-byte encryptcookie key from the session secret.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func csrfFromHeaderOrForm(c *fiber.Ctx) (string, error) {
	if token := c.Get(csrf.HeaderName); token != "" {
		return token, nil
	}
	if token := c.FormValue(csrfFormField); token != "" {
		return token, nil
	}
	return "", csrf.ErrTokenNotFound
}

func isStatelessPath(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/health/") ||
		p == "/metrics" ||
		strings.HasPrefix(p, storage.LocalPublicPrefix+"/") ||
		strings.HasPrefix(p, "/images/")
}
