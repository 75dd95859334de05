package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

func CreateBlog(b *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var blog models.Blog
		if err := c.ShouldBindJSON(&blog); err != nil {
			badRequest(c, err.Error())
			return
		}
		created, err := b.CreateBlog(c.Request.Context(), actor, &blog)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Blog created successfully"))
	}
}

// ListBlogs lists every blog, or one author's with ?author=<uuid>.
func ListBlogs(b *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		authorID := uuid.Nil
		if raw := strings.TrimSpace(c.Query("author")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(c, "invalid author ID format")
				return
			}
			authorID = id
		}

		blogs, total, err := b.ListBlogs(c.Request.Context(), authorID, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, blogs, offset, limit, total)
	}
}

func GetBlog(b *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		blog, err := b.GetBlog(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(blog, ""))
	}
}

func UpdateBlog(b *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var upd models.BlogUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, err.Error())
			return
		}
		blog, err := b.UpdateBlog(c.Request.Context(), actor, id, upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(blog, "Blog updated successfully"))
	}
}

func DeleteBlog(b *services.BlogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := b.DeleteBlog(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Blog deleted successfully"))
	}
}
