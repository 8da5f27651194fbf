package app

import (
	"smartpaper_backend/docs"
	"smartpaper_backend/internal/config"
	"smartpaper_backend/internal/middleware"
	"smartpaper_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// 试卷生成与作答
		authGroup.POST("/papers/generate", c.paper.Generate)
		authGroup.POST("/papers/attempts/:attemptId/submit", c.paper.Submit)

		// 答题历史
		authGroup.GET("/history", c.history.List)
		authGroup.GET("/history/:id", c.history.Detail)
		authGroup.DELETE("/history", c.history.Clear)
	}
}
