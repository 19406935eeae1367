// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	_ "scribe/docs" // swagger docs
	"scribe/internal/auth"
	"scribe/internal/config"
	"scribe/internal/database"
	"scribe/internal/mailer"
	"scribe/internal/media"
	"scribe/internal/middleware"
	"scribe/internal/models"
	"scribe/internal/notifications"
	"scribe/internal/repository"
	"scribe/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// metrics returns the process-wide Prometheus middleware. The collectors
// register with the default registry, so they are created once.
func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New("scribe-api")
	})
	return promMiddleware
}

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	shutdownCtx     context.Context
	shutdownFn      context.CancelFunc
	tokens          *auth.TokenIssuer
	notifier        *notifications.Notifier
	hub             *notifications.Hub
	authService     *service.AuthService
	passwordService *service.PasswordService
	userService     *service.UserService
	postService     *service.PostService
	commentService  *service.CommentService
	categoryService *service.CategoryService
}

// NewServerWithDeps creates a server from already initialized dependencies.
// redisClient may be nil; caching, rate limiting and cross-node event fan-out
// are then disabled.
func NewServerWithDeps(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	store media.Store,
	mail mailer.Mailer,
) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: metrics(),
		tokens:         auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	maxUpload := int64(cfg.MediaMaxUploadMB) << 20

	s.authService = service.NewAuthService(userRepo, s.tokens, mail, cfg.ClientDomain)
	s.passwordService = service.NewPasswordService(userRepo, mail, cfg.ClientDomain)
	s.userService = service.NewUserService(userRepo, postRepo, store, maxUpload)
	s.postService = service.NewPostService(postRepo, userRepo, store, maxUpload, s.publishUserEvent)
	s.commentService = service.NewCommentService(commentRepo, postRepo, userRepo, s.publishUserEvent)
	s.categoryService = service.NewCategoryService(categoryRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Origins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (200 requests per 10 minutes per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        200,
		Expiration: 10 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// Identity must be known before the context middleware copies it. The
	// request logger reads the enriched context once the chain returns.
	app.Use(middleware.Authenticate(s.tokens))
	app.Use(middleware.ContextMiddleware())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "scribe metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	if s.config.MediaDriver == "local" {
		app.Static("/media", s.config.MediaLocalDir)
	}

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Get("/verify/:token", s.VerifyAccount)

	// Password reset routes
	password := api.Group("/password")
	password.Post("/reset-password-link", middleware.RateLimit(s.redis, 3, 10*time.Minute, "reset_link"), s.SendResetPasswordLink)
	password.Get("/reset-password/:userId/:token", s.CheckResetPasswordLink)
	password.Post("/reset-password/:userId/:token", s.ResetPassword)

	// User routes. Fixed paths are registered before the :id routes.
	users := api.Group("/users")
	users.Get("/count", middleware.AdminRequired(), s.CountUsers)
	users.Get("/profile", middleware.AdminRequired(), s.ListUsers)
	users.Post("/profile/profile-photo-upload", middleware.AuthRequired(), s.UploadProfilePhoto)
	users.Get("/profile/:id", s.GetUserProfile)
	users.Put("/profile/:id", middleware.SelfRequired("id"), s.UpdateUserProfile)
	users.Delete("/profile/:id", middleware.SelfOrAdminRequired("id"), s.DeleteUserProfile)

	// Post routes
	posts := api.Group("/posts")
	posts.Post("/", middleware.AuthRequired(), s.CreatePost)
	posts.Get("/", s.GetPosts)
	posts.Get("/count", s.CountPosts)
	posts.Put("/update-image/:id", middleware.AuthRequired(), s.UpdatePostImage)
	posts.Put("/like/:id", middleware.AuthRequired(), s.ToggleLike)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", middleware.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired(), s.DeletePost)

	// Comment routes
	comments := api.Group("/comments")
	comments.Post("/", middleware.AuthRequired(), s.CreateComment)
	comments.Get("/", middleware.AdminRequired(), s.GetComments)
	comments.Get("/count", middleware.AdminRequired(), s.CountComments)
	comments.Put("/:id", middleware.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", middleware.AuthRequired(), s.DeleteComment)

	// Category routes
	categories := api.Group("/categories")
	categories.Post("/", middleware.AdminRequired(), s.CreateCategory)
	categories.Get("/", s.GetCategories)
	categories.Delete("/:id", middleware.AdminRequired(), s.DeleteCategory)

	// Activity feed
	api.Get("/ws", middleware.WebSocketAuthRequired(s.tokens), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,time=string}
// @Router /health/live [get]
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,checks=object}
// @Failure 503 {object} object{status=string,checks=object}
// @Router /health/ready [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it the API runs uncached.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// newApp builds the Fiber app with middleware and routes installed.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "scribe API",
		BodyLimit: (s.config.MediaMaxUploadMB + 1) << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// fiber's own errors (404 route, 405, 413) keep their status.
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.newApp()

	// Wire the hub to the Redis subscriber if available
	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub",
			slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
