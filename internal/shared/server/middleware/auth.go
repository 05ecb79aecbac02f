package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	sessionIDKey = "sessionId"
	userEmailKey = "userEmail"
)

// Identity is the signed-in principal attached to a request.
type Identity struct {
	UserID    string
	SessionID string
	Email     string
}

// Resolver turns a bearer token into an active identity.
type Resolver func(ctx context.Context, token string) (Identity, error)

type identityCtxKey struct{}

// WithIdentity stores the identity on a request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// Auth requires a bearer token naming an active session. The identity is
// stored both on the gin context and on the request context.
func Auth(resolve Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		id, err := resolve(c.Request.Context(), token)
		if err != nil || id.UserID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "session expired or signed out", nil)
			return
		}

		c.Set(userIDKey, id.UserID)
		c.Set(sessionIDKey, id.SessionID)
		if id.Email != "" {
			c.Set(userEmailKey, id.Email)
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// IdentityFromContext returns the identity set by Auth.
func IdentityFromContext(c *gin.Context) Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		UserID:    c.GetString(userIDKey),
		SessionID: c.GetString(sessionIDKey),
		Email:     c.GetString(userEmailKey),
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
