package handlers

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/api/middleware"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/gin-gonic/gin"
)

// GetCurrentUser godoc
// @Summary Get the authenticated account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func GetCurrentUser(svc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
			return
		}

		profile, err := svc.GetProfile(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateCurrentUser godoc
// @Summary Update the authenticated account's profile
// @Description Owner-only: the target account is always the caller's own.
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body service.ProfileUpdate true "Profile fields"
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [put]
func UpdateCurrentUser(svc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
			return
		}

		var req service.ProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		updated, err := svc.UpdateProfile(user.ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
