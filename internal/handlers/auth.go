package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
	}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user, pair, err := ah.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"user":          gin.H{"id": user.ID, "username": user.Username, "email": user.Email},
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	pair, err := ah.authService.Refresh(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "logged out"})
}

func (ah *AuthHandler) GithubLogin(c *gin.Context) {
	url, err := ah.authService.GithubLoginURL(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"authorize_url": url})
}

func (ah *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		RespondError(c, http.StatusBadRequest, "invalid_callback", nil)
		return
	}
	user, pair, err := ah.authService.GithubCallback(c.Request.Context(), code, state)
	if err != nil {
		ah.log.Error("github callback failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"user":          gin.H{"id": user.ID, "username": user.Username, "github_username": user.GithubUsername},
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
