package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"ui-feedback-backend/internal/sessions"
)

type fakeStarter struct {
	emails []string
}

func (f *fakeStarter) SignIn(ctx context.Context, email string) (sessions.Session, string, error) {
	f.emails = append(f.emails, email)
	return sessions.Session{ID: "sess-1", Email: email}, "token-123", nil
}

func newGoogleRouter(svc *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStartRequiresConfiguration(t *testing.T) {
	svc := NewGoogleService("", "", "", "http://ui.local/callback", &fakeStarter{})
	r := newGoogleRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	svc := NewGoogleService("id", "secret", "http://api.local/cb", "http://ui.local/callback", &fakeStarter{})
	r := newGoogleRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=nope&code=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCallbackStartsSession(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id":"1","email":"dev@example.com","verified_email":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer google.Close()

	starter := &fakeStarter{}
	svc := NewGoogleService("id", "secret", "http://api.local/cb", "http://ui.local/callback", starter)
	svc.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token"}
	svc.userInfoURL = google.URL + "/userinfo"
	r := newGoogleRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in %s", loc)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state="+state+"&code=abc", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); !strings.Contains(got, "token=token-123") {
		t.Fatalf("expected token in redirect, got %s", got)
	}
	if len(starter.emails) != 1 || starter.emails[0] != "dev@example.com" {
		t.Fatalf("expected session for dev@example.com, got %v", starter.emails)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state="+state+"&code=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected state to be single use, got %d", rec.Code)
	}
}

func TestStateStoreExpiry(t *testing.T) {
	s := newStateStore()
	s.put("old", time.Now().Add(-time.Second))
	if s.consume("old") {
		t.Fatalf("expected expired state rejected")
	}
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("http://ui.local/cb?x=1", "abc")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	if got != "http://ui.local/cb?token=abc&x=1" {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := appendToken("", "abc"); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}
