package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
	"github.com/yungbote/roadmapper-backend/internal/requestdata"
)

type UserHandler struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserHandler(log *logger.Logger, userRepo repos.UserRepo) *UserHandler {
	return &UserHandler{
		log:      log.With("handler", "UserHandler"),
		userRepo: userRepo,
	}
}

func (uh *UserHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	users, err := uh.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{rd.UserID})
	if err != nil {
		uh.log.Error("Me failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_user_failed", err)
		return
	}
	if len(users) == 0 {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	user := users[0]
	RespondOK(c, gin.H{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"github_username":  user.GithubUsername,
		"github_connected": user.GithubAccessToken != "",
		"avatar_url":       user.AvatarURL,
	})
}
