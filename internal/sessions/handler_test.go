package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api)
	authed := api.Group("")
	authed.Use(middleware.Auth(svc.Resolve))
	h.RegisterRoutes(authed)
	return r
}

func TestIssueTokenAndSignOut(t *testing.T) {
	svc := NewService(NewMemoryRepo(), time.Hour)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"email":"dev@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token == "" || body.UserID != "dev_example_com" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	signOut := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-out", nil)
		req.Header.Set("Authorization", "Bearer "+body.Token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := signOut(); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if code := signOut(); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after sign-out, got %d", code)
	}
}

func TestIssueTokenValidatesEmail(t *testing.T) {
	r := newTestRouter(NewService(NewMemoryRepo(), time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "validation_error") {
		t.Fatalf("expected validation_error, got %s", rec.Body.String())
	}
}
