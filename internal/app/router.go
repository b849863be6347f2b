package app

import (
	"lingua_backend/docs"
	"lingua_backend/internal/config"
	"lingua_backend/internal/middleware"
	"lingua_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerProgressRoutes(authGroup, c)

		authGroup.GET("/learning-paths/:id", c.learningPath.GetPath)
	}
}

func (a *App) registerProgressRoutes(rg *gin.RouterGroup, c *controllers) {
	progress := rg.Group("/progress")
	{
		progress.GET("", c.progress.ListProgress)
		progress.GET("/:pathId", c.progress.GetProgress)
		progress.GET("/:pathId/vocabulary/due", c.progress.ListDueWords)
		progress.POST("/start/:pathId", c.progress.StartPath)
		progress.POST("/complete-lesson", c.progress.CompleteLesson)
		progress.POST("/weekly-assessment", c.progress.SubmitWeeklyAssessment)
		progress.POST("/vocabulary", c.progress.ReviewVocabulary)
	}
}
