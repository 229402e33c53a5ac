package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/requestdata"
	"github.com/yungbote/roadmapper-backend/internal/services"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
	roadmapService services.RoadmapService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService, roadmapService services.RoadmapService) *ProjectHandler {
	return &ProjectHandler{
		log:            log.With("handler", "ProjectHandler"),
		projectService: projectService,
		roadmapService: roadmapService,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	project, err := ph.projectService.Create(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

func (ph *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projects, err := ph.projectService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		ph.log.Error("List failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"projects": projects})
}

func (ph *ProjectHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	project, err := ph.projectService.GetByID(c.Request.Context(), projectID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

func (ph *ProjectHandler) GenerateIdea(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	idea, err := ph.projectService.GenerateIdea(c.Request.Context())
	if err != nil {
		ph.log.Error("GenerateIdea failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"idea": idea})
}

func (ph *ProjectHandler) GenerateQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	questions, err := ph.projectService.GenerateQuestions(c.Request.Context(), projectID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}

func (ph *ProjectHandler) ListQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	questions, err := ph.projectService.ListQuestions(c.Request.Context(), projectID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}

func (ph *ProjectHandler) RecordAnswers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	var req struct {
		Answers []services.AnswerInput `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	answers, err := ph.projectService.RecordAnswers(c.Request.Context(), projectID, userID, req.Answers)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"answers": answers})
}

func (ph *ProjectHandler) GenerateRoadmap(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	modules, err := ph.roadmapService.Generate(c.Request.Context(), projectID, userID)
	if err != nil {
		ph.log.Error("GenerateRoadmap failed", "error", err, "project_id", projectID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

func (ph *ProjectHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	status, err := ph.projectService.Status(c.Request.Context(), projectID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": status})
}

func (ph *ProjectHandler) ConnectRepository(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	var req struct {
		RepoName string `json:"repo_name"`
		RepoURL  string `json:"repo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	project, err := ph.projectService.ConnectRepository(c.Request.Context(), projectID, userID, req.RepoName, req.RepoURL)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}
