package app

import (
	"studycoach_backend/docs"
	"studycoach_backend/internal/config"
	"studycoach_backend/internal/middleware"
	"studycoach_backend/internal/model"
	"studycoach_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 家长端只读报告，凭访问令牌
		public.GET("/guardian/:token/report", c.report.GetGuardianReport)
	}

	// 需要登录的路由
	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		auth.GET("/profile", c.auth.GetProfile)
		auth.PUT("/profile/password", c.auth.ChangePassword)
		auth.PUT("/profile/name", c.user.UpdateName)

		auth.GET("/catalog", c.catalog.ListActive)

		// 学生档案与计划的读入口（访问检查在 service 层按学生归属判定）
		auth.GET("/students/:studentId", c.student.Get)
		auth.GET("/students/:studentId/plans", c.plan.ListPlans)
		auth.GET("/students/:studentId/plans/by-date", c.plan.GetPlanByDate)
		auth.GET("/students/:studentId/report", c.report.GetReport)
		auth.GET("/students/:studentId/scores", c.report.ListScores)
		auth.GET("/plans/:id", c.plan.GetPlan)

		// 学生侧计划项操作
		auth.POST("/items/:id/timer/start", c.planItem.StartTimer)
		auth.POST("/items/:id/timer/stop", c.planItem.StopTimer)
		auth.GET("/items/:id/sessions", c.planItem.ListSessions)
		auth.POST("/items/:id/submit", c.planItem.Submit)
		auth.POST("/items/:id/reset", c.planItem.SelfReset)
		auth.POST("/items/:id/evidence/text", c.planItem.AddTextEvidence)
		auth.POST("/items/:id/evidence/file", c.planItem.UploadEvidence)
		auth.GET("/items/:id/evidence", c.planItem.ListEvidence)
		auth.DELETE("/evidence/:evidenceId", c.planItem.DeleteEvidence)
		auth.GET("/items/:id/review-history", c.review.History)
	}

	// 教师/助教路由
	teacher := router.Group("/api/teacher")
	teacher.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Teacher, model.Assistant, model.Admin),
	)
	{
		teacher.POST("/students", c.student.Create)
		teacher.GET("/students", c.student.List)
		teacher.PUT("/students/:studentId", c.student.Update)
		teacher.POST("/students/:studentId/links", c.student.Link)
		teacher.POST("/students/:studentId/guardian-token", c.student.RotateGuardianToken)
		teacher.DELETE("/students/:studentId/guardian-token", c.student.RevokeGuardianToken)

		teacher.POST("/templates", c.template.Create)
		teacher.GET("/templates", c.template.ListMine)
		teacher.GET("/templates/:id", c.template.Get)
		teacher.DELETE("/templates/:id", c.template.Delete)

		teacher.POST("/plans", c.plan.CreatePlan)
		teacher.POST("/plans/:id/publish", c.plan.PublishPlan)
		teacher.POST("/plans/:id/lock", c.plan.LockPlan)
		teacher.DELETE("/plans/:id", c.plan.DeletePlan)

		teacher.POST("/items/:id/review", c.review.Review)
		teacher.POST("/items/bulk-review", c.review.BulkReview)
		teacher.POST("/items/:id/time/reset", c.planItem.ResetTime)
		teacher.POST("/items/:id/sessions/:sessionId/void", c.planItem.VoidSession)

		teacher.POST("/scores", c.report.CreateScore)

		teacher.POST("/catalog", c.catalog.Create)
	}

	// 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Admin),
	)
	{
		admin.GET("/users", c.user.ListByRole)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)

		admin.GET("/catalog", c.catalog.ListAll)
		admin.POST("/catalog", c.catalog.Create)
		admin.PUT("/catalog/:id", c.catalog.Update)
		admin.DELETE("/catalog/:id", c.catalog.Deactivate)

		admin.PUT("/items/:id/review", c.review.Override)
	}
}
