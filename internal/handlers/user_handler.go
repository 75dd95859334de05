package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "user ID is required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		badRequest(c, "invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		// Authorization check: user can access their own data or admin can access any
		if actor.ID != userID && !actor.IsAdmin() {
			respondError(c, models.Forbidden("access denied"))
			return
		}

		user, err := u.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

func UpdateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		var upd models.ProfileUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, err.Error())
			return
		}

		user, err := u.UpdateUser(c.Request.Context(), actor, userID, upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "profile updated"))
	}
}
