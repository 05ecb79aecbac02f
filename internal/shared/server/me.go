package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	if id.UserID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	response := gin.H{
		"userId":    id.UserID,
		"sessionId": id.SessionID,
	}
	if id.Email != "" {
		response["email"] = id.Email
	}
	respond.JSON(c, http.StatusOK, response)
}
