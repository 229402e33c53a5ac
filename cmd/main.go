package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/roadmapper-backend/internal/db"
	"github.com/yungbote/roadmapper-backend/internal/handlers"
	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/middleware"
	"github.com/yungbote/roadmapper-backend/internal/repos"
	"github.com/yungbote/roadmapper-backend/internal/server"
	"github.com/yungbote/roadmapper-backend/internal/services"
	"github.com/yungbote/roadmapper-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	port := utils.GetEnv("PORT", "8080", log)
	allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	moduleRepo := repos.NewModuleRepo(thePG, log)
	taskRepo := repos.NewTaskRepo(thePG, log)
	questionRepo := repos.NewQuestionRepo(thePG, log)
	answerRepo := repos.NewAnswerRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	githubClient := services.NewGitHubClient(log)
	stateStore, err := services.NewOAuthStateStore(log)
	if err != nil {
		log.Error("Could not init OAuth state store", "error", err)
		os.Exit(1)
	}

	ideaAgent := services.NewIdeaAgent(log, openaiClient)
	questionAgent := services.NewQuestionAgent(log, openaiClient)
	roadmapAgent := services.NewRoadmapAgent(log, openaiClient)
	progressAgent := services.NewProgressAgent(log, openaiClient)
	taskHelpAgent := services.NewTaskHelpAgent(log, openaiClient)

	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, githubClient, stateStore, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	projectService := services.NewProjectService(thePG, log, projectRepo, moduleRepo, taskRepo, questionRepo, answerRepo, ideaAgent, questionAgent)
	roadmapService := services.NewRoadmapService(thePG, log, projectRepo, moduleRepo, taskRepo, questionRepo, answerRepo, roadmapAgent)
	completionService := services.NewCompletionService(thePG, log, projectRepo, moduleRepo, taskRepo)
	hierarchyService := services.NewHierarchyService(thePG, log, projectRepo, moduleRepo, taskRepo, taskHelpAgent)
	progressService := services.NewProgressService(thePG, log, taskRepo, moduleRepo, projectRepo, userRepo, githubClient, progressAgent, completionService)
	githubAccountService := services.NewGithubAccountService(thePG, log, userRepo, githubClient)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userRepo)
	projectHandler := handlers.NewProjectHandler(log, projectService, roadmapService)
	moduleHandler := handlers.NewModuleHandler(log, hierarchyService, completionService)
	taskHandler := handlers.NewTaskHandler(log, hierarchyService, completionService, progressService)
	githubHandler := handlers.NewGithubHandler(log, githubAccountService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UserHandler:    userHandler,
		ProjectHandler: projectHandler,
		ModuleHandler:  moduleHandler,
		TaskHandler:    taskHandler,
		GithubHandler:  githubHandler,
		AllowOrigins:   allowOrigins,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
