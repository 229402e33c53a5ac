package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmapper-backend/internal/handlers"
	"github.com/yungbote/roadmapper-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	ProjectHandler *handlers.ProjectHandler
	ModuleHandler  *handlers.ModuleHandler
	TaskHandler    *handlers.TaskHandler
	GithubHandler  *handlers.GithubHandler
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)
	api.GET("/auth/github/login", cfg.AuthHandler.GithubLogin)
	api.GET("/auth/github/callback", cfg.AuthHandler.GithubCallback)

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.Me)
	// Projects
	protected.POST("/projects/idea", cfg.ProjectHandler.GenerateIdea)
	protected.POST("/projects", cfg.ProjectHandler.Create)
	protected.GET("/projects", cfg.ProjectHandler.List)
	protected.GET("/projects/:project_id", cfg.ProjectHandler.Get)
	protected.GET("/projects/:project_id/status", cfg.ProjectHandler.Status)
	protected.POST("/projects/:project_id/repository", cfg.ProjectHandler.ConnectRepository)
	protected.POST("/projects/:project_id/questions/generate", cfg.ProjectHandler.GenerateQuestions)
	protected.GET("/projects/:project_id/questions", cfg.ProjectHandler.ListQuestions)
	protected.POST("/projects/:project_id/answers", cfg.ProjectHandler.RecordAnswers)
	protected.POST("/projects/:project_id/roadmap", cfg.ProjectHandler.GenerateRoadmap)
	// Modules
	protected.POST("/projects/:project_id/modules", cfg.ModuleHandler.Create)
	protected.GET("/projects/:project_id/modules", cfg.ModuleHandler.List)
	protected.POST("/modules/:module_id/tasks", cfg.ModuleHandler.CreateTask)
	protected.GET("/modules/:module_id/tasks", cfg.ModuleHandler.ListTasks)
	protected.PUT("/modules/:module_id/complete", cfg.ModuleHandler.Complete)
	// Tasks
	protected.PUT("/tasks/:task_id/complete", cfg.TaskHandler.Complete)
	protected.POST("/tasks/:task_id/help", cfg.TaskHandler.Help)
	protected.POST("/tasks/:task_id/check-progress", cfg.TaskHandler.CheckProgress)
	// Github repositories
	protected.GET("/github/repos", cfg.GithubHandler.ListRepos)
	protected.POST("/github/repos", cfg.GithubHandler.CreateRepo)

	return router
}
