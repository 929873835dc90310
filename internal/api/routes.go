package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ronicTakouugang/stockz/internal/api/handlers"
	"github.com/ronicTakouugang/stockz/internal/middleware"
)

// Dependencies are the collaborators the HTTP surface is built from.
// DB, Redis, RedisPool and SeriesCache may be nil when not in use.
type Dependencies struct {
	Analysis       handlers.AnalysisService
	Auth           *middleware.AuthMiddleware
	DB             handlers.HealthChecker
	Redis          handlers.HealthChecker
	RedisPool      handlers.RedisPoolMonitor
	Breaker        handlers.BreakerMonitor
	SeriesCache    handlers.SeriesCacheMonitor
	Logger         *logrus.Logger
	ServiceName    string
	Version        string
	AllowedOrigins []string
}

// NewRouter builds a gin engine with the middleware chain and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(deps.ServiceName),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.CORS(deps.AllowedOrigins),
	)
	SetupRoutes(router, deps)
	return router
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis, deps.Version)
	analysisHandler := handlers.NewAnalysisHandler(deps.Analysis)
	statsHandler := handlers.NewStatsHandler(deps.Breaker, deps.SeriesCache, deps.RedisPool)

	router.GET("/health", healthHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/backtest/:symbol", analysisHandler.GetBacktest)
		v1.GET("/indicators/:symbol", analysisHandler.GetIndicators)

		authed := v1.Group("")
		authed.Use(deps.Auth.RequireAuth())
		{
			authed.GET("/analysis/:symbol", analysisHandler.GetAnalysis)
			authed.GET("/quota", analysisHandler.GetQuota)

			authed.GET("/stats", statsHandler.GetStats)
			authed.POST("/stats/breaker/reset", statsHandler.ResetBreaker)
			authed.DELETE("/stats/series-cache", statsHandler.ClearSeriesCache)
		}
	}
}
