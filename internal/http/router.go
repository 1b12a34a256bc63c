package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/proprio/propertyhub/internal/auth"
	"github.com/proprio/propertyhub/internal/config"
	"github.com/proprio/propertyhub/internal/domain/user"
	"github.com/proprio/propertyhub/internal/http/handlers"
	"github.com/proprio/propertyhub/internal/http/middlewares"
	"github.com/proprio/propertyhub/internal/observability"
	"github.com/proprio/propertyhub/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB caps every JSON payload

// UsersStore is everything the auth and user handlers need from one users
// gateway implementation.
type UsersStore interface {
	handlers.UserReader
	handlers.UserWriter
	handlers.UsersStore
}

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	usersRepo := postgres.NewUsersRepo(pool, prom)
	propertiesRepo := postgres.NewPropertiesRepo(pool, prom)

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	return buildRouter(log, cfg, usersRepo, propertiesRepo, ping, reg, prom)
}

// NewRouterWithStores builds the same router on caller-supplied gateways;
// integration tests run it on the memory repos.
func NewRouterWithStores(log *slog.Logger, cfg config.Config, users UsersStore, properties handlers.PropertiesStore) *gin.Engine {
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	return buildRouter(log, cfg, users, properties, nil, reg, prom)
}

func buildRouter(
	log *slog.Logger,
	cfg config.Config,
	users UsersStore,
	properties handlers.PropertiesStore,
	ping func() error,
	reg *prometheus.Registry,
	prom *observability.Prom,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("propertyhub"))
	r.Use(prom.GinHandleMiddleware())

	// health + metrics

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// identity plumbing

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	apiLimiter := middlewares.NewRateLimiter(cfg.APIRateLimit, cfg.AuthRateWindow)

	// handlers

	authHandler := handlers.NewAuthHandler(users, users, jwtManager)
	usersHandler := handlers.NewUsersHandler(users)
	propertiesHandler := handlers.NewPropertiesHandler(properties)

	// credential endpoints, rate limited by client IP

	r.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	r.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	r.POST("/logout", authMW.RequireAuth(), authHandler.Logout)

	// everything below requires a verified bearer token

	authed := r.Group("/", authMW.RequireAuth(), apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	authed.GET("/users", authMW.RequireRole(user.RoleAdmin), usersHandler.ListUsers)
	authed.GET("/users/:id", usersHandler.GetUserByID)
	authed.POST("/users/:id", usersHandler.UpdateUser)
	authed.DELETE("/users/:id", usersHandler.DeleteUser)

	authed.GET("/properties", authMW.RequireRole(user.RoleAdmin), propertiesHandler.ListProperties)
	authed.POST("/properties", propertiesHandler.CreateProperty)
	authed.GET("/properties/:id", propertiesHandler.GetPropertyByID)
	authed.PUT("/properties/:id", propertiesHandler.UpdateProperty)
	authed.PATCH("/properties/:id", propertiesHandler.UpdateProperty)
	authed.DELETE("/properties/:id", propertiesHandler.DeleteProperty)

	return r
}
