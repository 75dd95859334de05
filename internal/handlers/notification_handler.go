package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

func ListNotifications(n *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		unread := c.Query("unread") == "true"

		items, total, err := n.ListNotifications(c.Request.Context(), actor, unread, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, items, offset, limit, total)
	}
}

func MarkNotificationRead(n *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := n.MarkRead(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Notification marked as read"))
	}
}
