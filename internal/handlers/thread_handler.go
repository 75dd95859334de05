package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

// ListThreads lists the caller's conversations. Guides see the threads of
// their own events unless they ask for ?as=user.
func ListThreads(t *services.ThreadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		as := c.Query("as")
		if as == "" {
			as = "user"
			if actor.Role == models.RoleGuide || actor.IsAdmin() {
				as = "guide"
			}
		}

		var (
			threads []*models.ChatThread
			err     error
		)
		switch as {
		case "guide":
			threads, err = t.ListGuideThreads(c.Request.Context(), actor)
		case "user":
			threads, err = t.ListUserThreads(c.Request.Context(), actor)
		default:
			badRequest(c, "as must be guide or user")
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(threads, ""))
	}
}

func GetThread(t *services.ThreadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		thread, err := t.GetThread(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(thread, ""))
	}
}

func ListMessages(t *services.ThreadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		messages, err := t.ListMessages(c.Request.Context(), actor, id, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(messages, ""))
	}
}

func PostMessage(t *services.ThreadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var req struct {
			Body string `json:"body" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		msg, err := t.PostMessage(c.Request.Context(), actor, id, req.Body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(msg, ""))
	}
}
