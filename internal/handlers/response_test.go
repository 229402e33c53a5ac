package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmapper-backend/internal/services"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{services.ErrValidation, http.StatusBadRequest, "validation_failed"},
		{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{services.ErrExternal, http.StatusBadGateway, "upstream_failed"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondServiceError(c, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var envelope ErrorEnvelope
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("%v: bad body: %v", tc.err, err)
		}
		if envelope.Error.Code != tc.code {
			t.Fatalf("%v: code = %q, want %q", tc.err, envelope.Error.Code, tc.code)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HealthCheck(c)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthcheck = %d %q", w.Code, w.Body.String())
	}
}
