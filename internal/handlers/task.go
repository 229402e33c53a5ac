package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/services"
)

type TaskHandler struct {
	log               *logger.Logger
	hierarchyService  services.HierarchyService
	completionService services.CompletionService
	progressService   services.ProgressService
}

func NewTaskHandler(log *logger.Logger, hierarchyService services.HierarchyService, completionService services.CompletionService, progressService services.ProgressService) *TaskHandler {
	return &TaskHandler{
		log:               log.With("handler", "TaskHandler"),
		hierarchyService:  hierarchyService,
		completionService: completionService,
		progressService:   progressService,
	}
}

func (th *TaskHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "task_id")
	if !ok {
		return
	}
	// Ownership check before the cascade write.
	if _, err := th.hierarchyService.GetTask(c.Request.Context(), taskID, userID); err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := th.completionService.MarkTaskComplete(c.Request.Context(), taskID); err != nil {
		th.log.Error("Complete failed", "error", err, "task_id", taskID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"completed": true})
}

func (th *TaskHandler) Help(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "task_id")
	if !ok {
		return
	}
	help, err := th.hierarchyService.TaskHelp(c.Request.Context(), taskID, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"help": help})
}

func (th *TaskHandler) CheckProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "task_id")
	if !ok {
		return
	}
	report, err := th.progressService.CheckTask(c.Request.Context(), taskID, userID)
	if err != nil {
		th.log.Error("CheckProgress failed", "error", err, "task_id", taskID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}
