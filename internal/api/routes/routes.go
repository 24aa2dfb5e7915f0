package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/skillsage/internal/api/handlers"
	"github.com/yoockh/skillsage/internal/api/middleware"
	"github.com/yoockh/skillsage/internal/metrics"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Profile   *handlers.ProfileHandler
	Resume    *handlers.ResumeHandler
	Admin     *handlers.AdminHandler
	JWT       middleware.JWTConfig
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(metrics.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", metrics.Handler())

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT))

	auth.POST("/interview/sessions", d.Interview.CreateSession)
	auth.GET("/interview/sessions", d.Interview.List)
	auth.GET("/interview/sessions/:session_id", d.Interview.Get)
	auth.DELETE("/interview/sessions/:session_id", d.Interview.Delete)
	auth.POST("/interview/answers", d.Interview.SubmitAnswer)
	auth.POST("/interview/summary", d.Interview.Summary)
	auth.POST("/transcribe", d.Interview.Transcribe)

	// older frontend paths
	auth.POST("/api/start-interview", d.Interview.CreateSession)
	auth.POST("/submit_answer", d.Interview.SubmitAnswer)
	auth.POST("/get_interview_summary", d.Interview.Summary)

	auth.GET("/me", d.Profile.CurrentUser)
	auth.GET("/profile/me", d.Profile.Me)
	auth.PUT("/profile/update", d.Profile.Update)
	auth.POST("/profile/picture", d.Profile.Picture)

	auth.POST("/cv/upload", d.Resume.Upload)
	auth.GET("/cv/latest", d.Resume.Latest)
	auth.POST("/resume/analyze", d.Resume.Analyze)
	auth.GET("/resume/analyses", d.Resume.List)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/references/ingest", d.Admin.Ingest)
	admin.GET("/references", d.Admin.References)
	admin.GET("/ai-calls", d.Admin.AICalls)
}
