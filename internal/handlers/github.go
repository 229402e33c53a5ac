package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/services"
)

type GithubHandler struct {
	log            *logger.Logger
	accountService services.GithubAccountService
}

func NewGithubHandler(log *logger.Logger, accountService services.GithubAccountService) *GithubHandler {
	return &GithubHandler{
		log:            log.With("handler", "GithubHandler"),
		accountService: accountService,
	}
}

func (gh *GithubHandler) ListRepos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	repos, err := gh.accountService.ListRepos(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"repos": repos})
}

func (gh *GithubHandler) CreateRepo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Private     bool   `json:"private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	repo, err := gh.accountService.CreateRepo(c.Request.Context(), userID, req.Name, req.Description, req.Private)
	if err != nil {
		gh.log.Error("CreateRepo failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"repo": repo})
}
