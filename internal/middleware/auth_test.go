package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/requestdata"
	"github.com/yungbote/roadmapper-backend/internal/services"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

// stubAuthService accepts exactly one token string and resolves it to a fixed
// user id.
type stubAuthService struct {
	validToken string
	userID     uuid.UUID
}

func (s *stubAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString != s.validToken {
		return ctx, errors.New("invalid or expired token")
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      s.userID,
	}), nil
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (*types.User, *services.TokenPair, error) {
	return nil, nil, errors.New("not implemented")
}
func (s *stubAuthService) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuthService) Refresh(ctx context.Context) (*services.TokenPair, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuthService) Logout(ctx context.Context) error { return errors.New("not implemented") }
func (s *stubAuthService) GithubLoginURL(ctx context.Context) (string, error) {
	return "", errors.New("not implemented")
}
func (s *stubAuthService) GithubCallback(ctx context.Context, code, state string) (*types.User, *services.TokenPair, error) {
	return nil, nil, errors.New("not implemented")
}

func newAuthTestRouter(t *testing.T, auth services.AuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	am := NewAuthMiddleware(log, auth)
	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID})
	})
	return router
}

func TestRequireAuth_MissingToken(t *testing.T) {
	router := newAuthTestRouter(t, &stubAuthService{validToken: "good", userID: uuid.New()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	router := newAuthTestRouter(t, &stubAuthService{validToken: "good", userID: uuid.New()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	router := newAuthTestRouter(t, &stubAuthService{validToken: "good", userID: userID})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestRequireAuth_QueryToken(t *testing.T) {
	router := newAuthTestRouter(t, &stubAuthService{validToken: "good", userID: uuid.New()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token=good", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("query token: status = %d, want 200", w.Code)
	}
}
