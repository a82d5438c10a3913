package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/handler"
	"github.com/noah-isme/ta-hiring-api/internal/middleware"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	"github.com/noah-isme/ta-hiring-api/pkg/config"
	"github.com/noah-isme/ta-hiring-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ta-hiring-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ta-hiring-api/pkg/middleware/requestid"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Application    *handler.ApplicationHandler
	Recommendation *handler.RecommendationHandler
	Metrics        *handler.MetricsHandler
}

// SetupRouter configures the gin engine, its middleware chain and every route.
func SetupRouter(cfg *config.Config, logr *zap.Logger, tokens middleware.TokenValidator, requests middleware.RequestObserver, handlers *Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(requests))

	r.GET("/health", handlers.Metrics.Health)
	r.GET("/ready", handlers.Metrics.Ready)
	r.GET("/metrics", handlers.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens))

	student := api.Group("/applications")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.POST("", handlers.Application.Create)
		student.GET("/:courseCode", handlers.Application.Get)
		student.POST("/:courseCode/withdraw", handlers.Application.Withdraw)
	}

	staff := api.Group("/courses/:courseCode")
	staff.Use(middleware.RequireRoles(models.RoleLecturer, models.RoleAdmin))
	{
		staff.GET("/applications", handlers.Application.ListOpen)
		staff.POST("/applications/:username/select", handlers.Application.Select)
		staff.POST("/applications/:username/reject", handlers.Application.Reject)

		staff.GET("/recommendations", handlers.Recommendation.Recommend)
		staff.POST("/recommendations/filter", handlers.Recommendation.Filter)
		staff.POST("/recommendations/auto-reject", handlers.Recommendation.AutoReject)
		staff.GET("/recommendations/export", handlers.Recommendation.Export)
	}

	api.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), handlers.Metrics.Summary)

	return r
}
