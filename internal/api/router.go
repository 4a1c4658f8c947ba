package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/frontend"
	"github.com/searchcraftinc/searchcraft-connect/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Settings    domain.SettingsService
	Nonces      domain.NonceService
	Content     domain.ContentSink
	Renderer    *frontend.Renderer
	ReadClient  domain.ClientFactory
	AdminToken  string
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 4 << 20 // 4 MB
	rateLimit   = 50      // requests per second per IP
	rateBurst   = 100     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", middleware.NonceHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
}

// registerPublicRoutes sets up the unauthenticated routes.
func registerPublicRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	health := NewHealthHandler(deps.Settings, deps.ReadClient, deps.Log, deps.Version)
	embed := NewEmbedHandler(deps.Settings, deps.Renderer, deps.Log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)
	api.GET("/embed", embed.Fragment)
}

// registerAdminRoutes sets up the routes behind the admin token.
func registerAdminRoutes(ctx context.Context, admin *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	guard := middleware.NewBruteForceGuard(ctx, log)
	admin.Use(middleware.BruteForceMiddleware(guard))
	admin.Use(middleware.AdminAuth(deps.AdminToken, log, guard))

	settingsH := NewSettingsHandler(deps.Settings, deps.Nonces, log)
	content := NewContentHandler(deps.Content, log)
	stats := NewStatsHandler(deps.Settings, deps.ReadClient, log)

	admin.GET("/settings", settingsH.Get)
	admin.POST("/settings",
		middleware.RequireNonce(deps.Nonces, ActionSaveSettings, log), settingsH.Update)
	admin.POST("/settings/reset",
		middleware.RequireNonce(deps.Nonces, ActionResetSettings, log), settingsH.Reset)
	admin.GET("/nonce", settingsH.Nonce)

	admin.POST("/content/events", content.Submit)

	admin.GET("/index/stats", stats.IndexStats)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerPublicRoutes(r.Group("/api/v1"), deps)
	registerAdminRoutes(ctx, r.Group("/admin"), deps)

	return r
}
