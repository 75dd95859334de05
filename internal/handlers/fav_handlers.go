package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type toggleFunc func(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error)

// toggle flips a membership set on the event and reports the caller's new state under key.
func toggle(c *gin.Context, fn toggleFunc, key string, members func(*models.Event) []uuid.UUID) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	event, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
		"event": event,
		key:     slices.Contains(members(event), actor.ID),
	}, ""))
}

func ToggleInterest(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		toggle(c, e.ToggleInterest, "interested", func(ev *models.Event) []uuid.UUID { return ev.InterestedUsers })
	}
}

func ToggleBookmark(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		toggle(c, e.ToggleBookmark, "bookmarked", func(ev *models.Event) []uuid.UUID { return ev.BookmarkedBy })
	}
}
