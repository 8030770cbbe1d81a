package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stackdesk/iam-service/internal/api/handler"
	"github.com/stackdesk/iam-service/internal/api/middleware"
	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
	"github.com/stackdesk/iam-service/internal/core/service"
	"github.com/stackdesk/iam-service/internal/infrastructure/auth"
	mongodb "github.com/stackdesk/iam-service/internal/infrastructure/db/mongo"
	redisdb "github.com/stackdesk/iam-service/internal/infrastructure/db/redis"
	"github.com/stackdesk/iam-service/internal/pkg/config"
)

// Dependencies bundles the shared infrastructure the router wires together.
type Dependencies struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Config *config.Config
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("iam"))

	// --- Infrastructure ---
	roleRepo := mongodb.NewRoleRepository(deps.DB)
	userRepo := mongodb.NewUserRepository(deps.DB)
	tokens := auth.NewJWTService(deps.Config.JWTSecret, deps.Config.TokenTTL)
	hasher := auth.NewBcryptHasher(0)
	throttle := redisdb.NewLoginThrottle(deps.Redis, deps.Config.Login.MaxAttempts, deps.Config.Login.AttemptWindow)

	// --- Services ---
	roleService := service.NewRoleService(roleRepo, userRepo, deps.Logger)
	userService := service.NewUserService(userRepo, roleRepo, hasher, tokens, throttle, deps.Logger)
	accessService := service.NewAccessService(userRepo, roleRepo, tokens, deps.Logger)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	userHandler := handler.NewUserHandler(userService)

	registerRoutes(e, accessService, authHandler, roleHandler, userHandler)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

// registerRoutes declares the full route table. Every route except signup and
// login sits behind the authentication gate plus its own module gate.
func registerRoutes(
	e *echo.Echo,
	access ports.AccessControl,
	authHandler *handler.AuthHandler,
	roleHandler *handler.RoleHandler,
	userHandler *handler.UserHandler,
) {
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	authed := middleware.Authenticate(access)
	gate := func(m domain.AccessModule) echo.MiddlewareFunc {
		return middleware.RequireModule(access, m)
	}

	roles := e.Group("/roles", authed)
	roles.POST("", roleHandler.Create, gate(domain.ModuleRoleCreate))
	roles.GET("", roleHandler.List, gate(domain.ModuleRoleList))
	roles.GET("/:id", roleHandler.Get, gate(domain.ModuleRoleRead))
	roles.PUT("/:id", roleHandler.Update, gate(domain.ModuleRoleUpdate))
	roles.DELETE("/:id", roleHandler.Delete, gate(domain.ModuleRoleDelete))
	roles.PUT("/:id/access", roleHandler.MutateModules, gate(domain.ModuleRoleUpdateAccess))

	users := e.Group("/users", authed)
	users.GET("", userHandler.List, gate(domain.ModuleUserList))
	users.POST("", userHandler.Create, gate(domain.ModuleUserCreate))
	// Bulk routes are declared before /:id so the literal segment wins.
	users.PUT("/bulk/same", userHandler.BulkUpdateSame, gate(domain.ModuleUserBulkSame))
	users.PUT("/bulk/different", userHandler.BulkUpdateEach, gate(domain.ModuleUserBulkPerUser))
	users.GET("/:id", userHandler.Get, gate(domain.ModuleUserRead))
	users.PUT("/:id", userHandler.Update, gate(domain.ModuleUserUpdate))
	users.DELETE("/:id", userHandler.Delete, gate(domain.ModuleUserDelete))
	users.GET("/:id/access/:module", userHandler.CheckAccess, gate(domain.ModuleAccessCheck))
}
