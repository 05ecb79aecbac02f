package sessions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches routes that do not need a session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/token", h.issueToken)
}

// RegisterRoutes attaches routes behind the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/sign-out", h.signOut)
}

type tokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// issueToken does not verify email ownership; it must sit behind the OTP
// gateway that does.
func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}
	session, token, err := h.Svc.SignIn(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start session", nil)
		return
	}
	respond.OK(c, gin.H{
		"token":     token,
		"expiresAt": session.ExpiresAt,
		"userId":    session.UserID,
		"sessionId": session.ID,
	})
}

func (h *Handler) signOut(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	if err := h.Svc.SignOut(c.Request.Context(), id.SessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to end session", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
