package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/services"
)

type ModuleHandler struct {
	log               *logger.Logger
	hierarchyService  services.HierarchyService
	completionService services.CompletionService
}

func NewModuleHandler(log *logger.Logger, hierarchyService services.HierarchyService, completionService services.CompletionService) *ModuleHandler {
	return &ModuleHandler{
		log:               log.With("handler", "ModuleHandler"),
		hierarchyService:  hierarchyService,
		completionService: completionService,
	}
}

func (mh *ModuleHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	var req struct {
		Name           string     `json:"name"`
		Description    string     `json:"description"`
		ParentModuleID *uuid.UUID `json:"parent_module_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	module, err := mh.hierarchyService.CreateModule(c.Request.Context(), projectID, userID, req.Name, req.Description, req.ParentModuleID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"module": module})
}

func (mh *ModuleHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	modules, err := mh.hierarchyService.ListModules(c.Request.Context(), projectID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

func (mh *ModuleHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(c, "module_id")
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	task, err := mh.hierarchyService.CreateTask(c.Request.Context(), moduleID, userID, req.Description)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"task": task})
}

func (mh *ModuleHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(c, "module_id")
	if !ok {
		return
	}
	tasks, err := mh.hierarchyService.ListTasks(c.Request.Context(), moduleID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"tasks": tasks})
}

func (mh *ModuleHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(c, "module_id")
	if !ok {
		return
	}
	// Ownership runs through the hierarchy lookup before the cascade write.
	if _, err := mh.hierarchyService.ListTasks(c.Request.Context(), moduleID, userID); err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := mh.completionService.MarkModuleComplete(c.Request.Context(), moduleID); err != nil {
		mh.log.Error("Complete failed", "error", err, "module_id", moduleID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"completed": true})
}
