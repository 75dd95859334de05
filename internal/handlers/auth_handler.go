package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/middleware"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

func CreateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			badRequest(c, err.Error())
			return
		}

		createdUser, err := u.CreateUser(c.Request.Context(), &user)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(createdUser, "account created"))
	}
}

func AuthenticateUser(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		tokenRes, err := u.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		middleware.SetAuthCookies(c, tokenRes, secureCookies)

		// Return user info but not tokens
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":       tokenRes.User,
			"expires_in": tokenRes.ExpiresIn,
		}, "signed in"))
	}
}

// Logout clears the auth cookies. Bearer clients discard their own tokens.
func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearAuthCookies(c, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}

func Profile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		user, err := u.GetUser(c.Request.Context(), actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":     user,
			"is_admin": actor.IsAdmin(),
		}, ""))
	}
}
