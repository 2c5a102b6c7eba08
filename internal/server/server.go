// Package server contains the HTML and JSON handlers and the HTTP wiring.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/middleware"
	"shortlink/internal/repository"
	"shortlink/internal/service"
	"shortlink/internal/shortener"
	"shortlink/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          *cache.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	linkRepo       repository.LinkRepository
	userService    *service.UserService
	linkService    *service.LinkService
}

// NewServerWithDeps creates a Server around an open database.
// redisClient may be nil. A nil provider is built from cfg.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, provider shortener.Provider) (*Server, error) {
	if provider == nil {
		p, err := shortener.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("shortener init failed: %w", err)
		}
		provider = p
	}

	store := cache.NewStore(redisClient)
	userRepo := repository.NewUserRepository(db, store)
	linkRepo := repository.NewLinkRepository(db, store)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("shortlink"),
		userRepo:       userRepo,
		linkRepo:       linkRepo,
		userService:    service.NewUserService(userRepo, cfg.BcryptCost),
		linkService:    service.NewLinkService(linkRepo, provider, cfg.ShortenerTimeout()),
	}, nil
}

// App returns the configured Fiber app, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "shortlink",
		Views:        views.New(),
		ViewsLayout:  views.Layout,
		ErrorHandler: s.ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Copies request and trace ids into the user context for LoggerFromContext.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.TrimRight(s.config.BaseURL, "/"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	rl := middleware.NewRateLimiter(s.redis, middleware.RateLimitEnabled(s.config.Env), middleware.FailOpen)
	loginLimit := rl.Handler("login", 10, 5*time.Minute)
	registerLimit := rl.Handler("register", 5, 10*time.Minute)

	// HTML pages
	app.Get("/", s.HomePage)
	app.Get("/register", s.RegisterPage)
	app.Post("/register", registerLimit, s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", loginLimit, s.Login)
	app.Get("/shorten", s.SessionRequired(), s.ShortenPage)
	app.Post("/shorten", s.SessionRequired(), s.Shorten)
	app.Get("/shortend_urls", s.SessionRequired(), s.ShortURLsPage)
	app.Get("/logout", s.SessionRequired(), s.Logout)
	app.Get(shortener.LocalPath+":code", s.Redirect)

	// JSON API
	api := app.Group("/api")
	auth := api.Group("/auth")
	auth.Post("/register", registerLimit, s.APIRegister)
	auth.Post("/login", loginLimit, s.APILogin)
	auth.Post("/logout", s.AuthRequired(), s.APILogout)

	protected := api.Group("", s.AuthRequired())
	protected.Post("/shorten", s.APIShorten)
	protected.Get("/urls", s.APIListURLs)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: a
// missing client is reported as disabled and does not fail readiness.
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

	redisStatus := "disabled"
	if s.store.Enabled() {
		redisStatus = "healthy"
		if err := s.store.Ping(ctx); err != nil {
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
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	middleware.Logger.Info("server starting", zap.String("port", s.config.Port))
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log := middleware.Logger

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Error("error shutting down HTTP server", zap.Error(err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Error("error closing sql DB", zap.Error(cerr))
		}
	}

	if err := s.store.Close(); err != nil {
		log.Error("error closing redis", zap.Error(err))
	}

	log.Info("server shutdown complete")
	return nil
}
