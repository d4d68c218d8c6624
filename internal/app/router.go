package app

import (
	"logicfy_backend/docs"
	"logicfy_backend/internal/config"
	"logicfy_backend/internal/middleware"
	"logicfy_backend/internal/model"
	"logicfy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 1. 学员接口
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	registerLearnerRoutes(api, c)

	// 2. 管理员接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	registerAdminRoutes(admin, c)
}

func registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	answers := rg.Group("/answers")
	{
		answers.POST("", c.answer.RecordAnswer)
		answers.GET("", c.answer.ListAnswers)
		answers.GET("/:questionId", c.answer.LatestAnswer)
	}

	progress := rg.Group("/progress")
	{
		progress.GET("/lessons", c.progress.ListLessons)
		progress.GET("/lessons/:id", c.progress.GetLesson)
		progress.POST("/lessons/:id/recompute", c.progress.RecomputeLesson)
		progress.GET("/sections", c.progress.ListSections)
		progress.GET("/sections/:id", c.progress.GetSection)
		progress.GET("/units", c.progress.ListUnits)
		progress.GET("/units/:id", c.progress.GetUnit)
	}

	xp := rg.Group("/xp")
	{
		xp.GET("/log", c.xp.GetLog)
		xp.GET("/stats", c.xp.GetStats)
		xp.GET("/leaderboard", c.xp.GetLeaderboard)
	}

	enrollments := rg.Group("/enrollments")
	{
		enrollments.GET("", c.enrollment.List)
		enrollments.POST("/:lessonId", c.enrollment.Enroll)
		enrollments.PATCH("/:lessonId", c.enrollment.SetActive)
		enrollments.DELETE("/:lessonId", c.enrollment.Unenroll)
	}

	rg.GET("/dashboard", c.dashboard.GetDashboard)
}

func registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("", c.dashboard.GetAdminDashboard)
		dashboard.GET("/questions/hardest", c.analytics.GetHardestQuestions)
		dashboard.GET("/lessons/popular", c.enrollment.PopularLessons)
		dashboard.GET("/units/popular", c.enrollment.PopularUnits)
		dashboard.GET("/weekly", c.analytics.GetWeeklyActivity)
		dashboard.GET("/languages/:id", c.dashboard.GetLanguageDetail)
	}

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/questions/:id", c.analytics.GetQuestion)
		analytics.POST("/questions/:id/recompute", c.analytics.RecomputeQuestion)
		analytics.GET("/lessons/:id", c.analytics.GetLesson)
		analytics.POST("/lessons/:id/recompute", c.analytics.RecomputeLesson)
	}

	rg.POST("/xp/grant", c.xp.Grant)

	content := rg.Group("/content")
	{
		content.POST("/refresh-counts", c.content.RefreshAllCounts)
		content.POST("/lessons/:id/refresh-count", c.content.RefreshLessonCount)
		content.POST("/sections/:id/refresh-count", c.content.RefreshSectionCount)
		content.POST("/units/:id/refresh-count", c.content.RefreshUnitCount)
		content.DELETE("/lessons/:id", c.content.DeleteLesson)
		content.DELETE("/sections/:id", c.content.DeleteSection)
		content.DELETE("/units/:id", c.content.DeleteUnit)
		content.DELETE("/questions/:id", c.content.DeleteQuestion)
	}

	repair := rg.Group("/repair")
	{
		repair.POST("/users/:id", c.repair.RepairUser)
		repair.POST("/lessons/:id", c.repair.RepairLesson)
		repair.POST("/questions/:id", c.repair.RepairQuestion)
	}
}
