package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

func CreateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			badRequest(c, err.Error())
			return
		}

		created, err := e.CreateEvent(c.Request.Context(), actor, &event)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

// ListEvents serves ?status= for admins and ?mine=true for a creator's own events.
func ListEvents(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		mine := false
		if raw := c.Query("mine"); raw != "" {
			var err error
			if mine, err = strconv.ParseBool(raw); err != nil {
				badRequest(c, "invalid mine parameter")
				return
			}
		}
		status := strings.TrimSpace(c.Query("status"))

		events, total, err := e.ListEvents(c.Request.Context(), actorFrom(c), status, mine, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, events, offset, limit, total)
	}
}

func GetEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		event, err := e.GetEvent(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func UpdateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var upd models.EventUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, err.Error())
			return
		}

		event, err := e.UpdateEvent(c.Request.Context(), actor, id, upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "Event updated successfully"))
	}
}

func DeleteEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := e.DeleteEvent(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted successfully"))
	}
}

func SetEventStatus(e *services.EventService) gin.HandlerFunc {
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
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		event, err := e.SetEventStatus(c.Request.Context(), actor, id, strings.TrimSpace(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "Event status updated"))
	}
}

// RegisterForEvent answers with the registration and, when one was opened,
// the chat thread with the event's creator.
func RegisterForEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var reg models.EventRegistration
		if err := c.ShouldBindJSON(&reg); err != nil {
			badRequest(c, err.Error())
			return
		}

		result, err := e.Register(c.Request.Context(), actor, id, &reg)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "Registered for event"))
	}
}

func ListEventRegistrations(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		regs, err := e.ListEventRegistrations(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(regs, ""))
	}
}

func ListMyRegistrations(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		regs, err := e.ListMyRegistrations(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(regs, ""))
	}
}
