package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/analyses"
	googleauth "ui-feedback-backend/internal/auth"
	"ui-feedback-backend/internal/findings"
	"ui-feedback-backend/internal/services/health"
	"ui-feedback-backend/internal/sessions"
	"ui-feedback-backend/internal/shared/config"
	"ui-feedback-backend/internal/shared/metrics"
	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/server/respond"
)

// RouterDeps are the handlers and collaborators mounted by NewRouter.
type RouterDeps struct {
	Config          config.Config
	DB              *sql.DB
	Resolver        middleware.Resolver
	Catalog         *findings.Catalog
	SessionHandler  *sessions.Handler
	AnalysisHandler *analyses.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(health.NewService(deps.DB)))
	api.GET("/tabs", tabsHandler(deps.Catalog))
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterPublicRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Resolver),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.AnalyzeGroup: {Rate: deps.Config.AnalyzeRatePerSec, Burst: deps.Config.AnalyzeBurst},
			},
			GroupFor: middleware.AnalyzeGroupFor,
		}),
	)
	registerMeRoutes(authed)
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(authed)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(authed)
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Status(c.Request.Context())
		if err != nil {
			respond.Error(c, http.StatusServiceUnavailable, "unavailable", "database unreachable", st)
			return
		}
		respond.OK(c, st)
	}
}

func tabsHandler(catalog *findings.Catalog) gin.HandlerFunc {
	if catalog == nil {
		catalog = findings.DefaultCatalog()
	}
	return func(c *gin.Context) {
		respond.OK(c, gin.H{"tabs": catalog.Tabs()})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
