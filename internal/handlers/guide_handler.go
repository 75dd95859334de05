package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewDecision struct {
	Notes string `json:"notes" binding:"max=1000"`
}

func ApplyForGuide(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var app models.GuideApplication
		if err := c.ShouldBindJSON(&app); err != nil {
			badRequest(c, err.Error())
			return
		}

		created, err := g.Apply(c.Request.Context(), actor, &app)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Guide application submitted"))
	}
}

func ListMyApplications(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		apps, err := g.ListMyApplications(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(apps, ""))
	}
}

func GetApplication(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		app, err := g.GetApplication(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(app, ""))
	}
}

func ListApplications(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		status := strings.TrimSpace(c.Query("status"))

		apps, total, err := g.ListApplications(c.Request.Context(), actor, status, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, apps, offset, limit, total)
	}
}

type reviewFunc func(ctx context.Context, actor models.Actor, id primitive.ObjectID, notes string) (*models.GuideApplication, error)

// decide binds the optional reviewer notes and runs approve or reject.
func decide(c *gin.Context, fn reviewFunc, msg string) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body reviewDecision
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	app, err := fn(c.Request.Context(), actor, id, strings.TrimSpace(body.Notes))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(app, msg))
}

func ApproveApplication(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		decide(c, g.Approve, "Guide application approved")
	}
}

func RejectApplication(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		decide(c, g.Reject, "Guide application rejected")
	}
}

func ListGuides(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		guides, total, err := g.ListGuides(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, guides, offset, limit, total)
	}
}

func GetGuide(g *services.GuideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		guide, err := g.GetGuide(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(guide, ""))
	}
}
