package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/saiza/notehub/internal/config"
	"github.com/saiza/notehub/internal/http/handlers"
	"github.com/saiza/notehub/internal/http/middlewares"
	"github.com/saiza/notehub/internal/observability"
)

// Deps carries everything the router wires into handlers. Interfaces keep the
// router testable against in-memory stores.
type Deps struct {
	Auth     handlers.Authenticator
	Profiles handlers.ProfileManager
	Tracker  handlers.EventTracker
	Stats    handlers.StatsProvider
	Tokens   middlewares.TokenVerifier

	Prom           *observability.Prom // optional
	MetricsHandler http.Handler        // optional, mounted at /metrics
	Probes         map[string]handlers.Pinger
}

func NewRouter(cfg config.Config, log *slog.Logger, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.ClientContext())
	r.Use(otelgin.Middleware("notehub-api"))
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBodyBytes))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics

	health := handlers.NewHealthHandler(deps.Probes)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	authMw := middlewares.NewAuthMiddleware(deps.Tokens)

	authHandler := handlers.NewAuthHandler(deps.Auth)
	usersHandler := handlers.NewUsersHandler(deps.Profiles)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Tracker)
	adminHandler := handlers.NewAdminHandler(deps.Stats)

	// credential endpoints get a tight per-IP limit
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/signin", authHandler.SignIn)
	}

	apiLimiter := middlewares.NewRateLimiter(120, time.Minute)

	userGroup := r.Group("/user")
	userGroup.Use(authMw.RequireAuth())
	userGroup.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		userGroup.GET("/profile", usersHandler.Profile)
		userGroup.POST("/complete-profile", usersHandler.CompleteProfile)
		userGroup.PUT("/premium", usersHandler.UpgradeToPremium)
	}

	// anonymous tracking is allowed; identity is attached when present
	analyticsGroup := r.Group("/analytics")
	analyticsGroup.Use(authMw.OptionalAuth())
	analyticsGroup.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		analyticsGroup.POST("/track", analyticsHandler.Track)
	}

	adminGroup := r.Group("/admin")
	adminGroup.Use(authMw.RequireAuth())
	adminGroup.Use(authMw.RequireRole("admin"))
	{
		adminGroup.GET("/dashboard-stats", adminHandler.DashboardStats)
		adminGroup.GET("/logs", adminHandler.Logs)
	}

	return r
}
