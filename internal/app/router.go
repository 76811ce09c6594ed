package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chainedu_backend/docs"
	"chainedu_backend/internal/config"
	"chainedu_backend/internal/middleware"
	"chainedu_backend/internal/model"
	"chainedu_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api/v1")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	router.GET("/health", c.health.Health)

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	// 账户
	rg.GET("/auth/me", c.auth.Me)
	rg.PUT("/auth/me", c.auth.UpdateMe)

	// 课程模块与课时
	rg.GET("/modules", c.module.List)
	rg.GET("/modules/:id", c.module.Get)
	rg.GET("/lessons/:id", c.module.GetLesson)

	// 学习进度
	rg.GET("/progress", c.progress.List)
	rg.GET("/progress/modules/:moduleId", c.progress.GetModule)
	rg.POST("/progress/modules/:moduleId/start", c.progress.Start)
	rg.POST("/progress/modules/:moduleId/complete", c.progress.Complete)
	rg.PATCH("/progress/modules/:moduleId", c.progress.Update)

	// 测验
	rg.GET("/modules/:id/assessments", c.assessment.ListForModule)
	rg.POST("/assessments/:id/submit", c.assessment.Submit)
	rg.GET("/attempts", c.assessment.ListAttempts)

	// 成就
	rg.GET("/achievements", c.achievement.List)
	rg.GET("/achievements/stats", c.achievement.Stats)

	// 通知
	rg.GET("/notifications", c.notification.List)
	rg.GET("/notifications/unread-count", c.notification.UnreadCount)
	rg.POST("/notifications/:id/read", c.notification.MarkRead)
	rg.POST("/notifications/read-all", c.notification.MarkAllRead)

	// 讨论区
	rg.GET("/forum/posts", c.forum.ListThreads)
	rg.GET("/forum/posts/:id", c.forum.GetThread)
	rg.POST("/forum/posts", c.forum.CreateThread)
	rg.POST("/forum/posts/:id/replies", c.forum.Reply)
	rg.POST("/forum/posts/:id/vote", c.forum.Vote)
	rg.POST("/forum/posts/:id/solve", c.forum.MarkSolved)
	rg.POST("/forum/posts/:id/pin", middleware.RoleMiddleware(model.Instructor), c.forum.Pin)
	rg.DELETE("/forum/posts/:id", c.forum.Delete)

	// 班级(学生可查看)
	rg.GET("/cohorts", c.cohort.List)
	rg.GET("/cohorts/:id", c.cohort.Get)
	rg.GET("/cohorts/:id/members", c.cohort.Members)
	rg.GET("/cohorts/:id/deadlines", c.cohort.Deadlines)
	rg.GET("/cohorts/:id/announcements", c.cohort.Announcements)

	// AI 学习助手
	rg.POST("/assistant/sessions", c.assistant.CreateSession)
	rg.GET("/assistant/sessions", c.assistant.ListSessions)
	rg.GET("/assistant/sessions/:id/messages", c.assistant.Messages)
	rg.DELETE("/assistant/sessions/:id", c.assistant.DeleteSession)
	rg.POST("/assistant/sessions/:id/chat", c.assistant.Chat)

	// 文件上传
	rg.POST("/uploads", c.upload.Upload)
	rg.DELETE("/uploads", middleware.RoleMiddleware(model.Instructor), c.upload.Delete)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		// 人工评分队列
		instructor.GET("/grading/queue", c.grading.Queue)
		instructor.POST("/grading/attempts/:id", c.grading.Grade)
		instructor.GET("/grading/history", c.grading.History)

		// 班级管理
		instructor.POST("/cohorts", c.cohort.Create)
		instructor.PUT("/cohorts/:id", c.cohort.Update)
		instructor.POST("/cohorts/:id/cancel", c.cohort.Cancel)
		instructor.DELETE("/cohorts/:id", c.cohort.Delete)
		instructor.POST("/cohorts/:id/members", c.cohort.AddMember)
		instructor.DELETE("/cohorts/:id/members/:userId", c.cohort.RemoveMember)
		instructor.POST("/cohorts/:id/deadlines", c.cohort.CreateDeadline)
		instructor.POST("/cohorts/:id/announcements", c.cohort.CreateAnnouncement)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/v1/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
	)

	// 课程管理对讲师开放（admin 始终放行）
	curriculum := admin.Group("/")
	curriculum.Use(middleware.RoleMiddleware(model.Instructor))
	{
		curriculum.POST("/modules", c.module.Create)
		curriculum.PUT("/modules/:id", c.module.Update)
		curriculum.DELETE("/modules/:id", c.module.Delete)
		curriculum.POST("/modules/:id/lessons", c.module.CreateLesson)
		curriculum.PUT("/lessons/:id", c.module.UpdateLesson)
		curriculum.DELETE("/lessons/:id", c.module.DeleteLesson)

		curriculum.POST("/modules/:id/assessments", c.assessment.Create)
		curriculum.PUT("/assessments/:id", c.assessment.Update)
		curriculum.DELETE("/assessments/:id", c.assessment.Delete)
	}

	// 成就目录只允许 admin 维护
	achievements := admin.Group("/")
	achievements.Use(middleware.RoleMiddleware(model.Admin))
	{
		achievements.POST("/achievements", c.achievement.Create)
		achievements.PUT("/achievements/:id", c.achievement.Update)
	}
}
