package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

type commentBody struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment comments on the blog or event named by :id.
func CreateComment(cs *services.CommentService, parentType models.ParentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var body commentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}

		comment, err := cs.CreateComment(c.Request.Context(), actor, parentType, parentID, body.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(comment, "Comment added"))
	}
}

func ListComments(cs *services.CommentService, parentType models.ParentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		comments, total, err := cs.ListComments(c.Request.Context(), actorFrom(c), parentType, parentID, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, comments, offset, limit, total)
	}
}

func UpdateComment(cs *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var body commentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
		comment, err := cs.UpdateComment(c.Request.Context(), actor, id, body.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(comment, "Comment updated"))
	}
}

func DeleteComment(cs *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := cs.DeleteComment(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Comment deleted"))
	}
}
