package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

// CreateReview reviews the spot or guide named by the :id param.
func CreateReview(r *services.ReviewService, subjectType models.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var in services.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}

		subject := models.SubjectRef{Type: subjectType, ID: subjectID}
		review, err := r.CreateReview(c.Request.Context(), actor, subject, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(review, "Review created successfully"))
	}
}

func ListReviews(r *services.ReviewService, subjectType models.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}

		subject := models.SubjectRef{Type: subjectType, ID: subjectID}
		reviews, total, err := r.ListReviews(c.Request.Context(), subject, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, reviews, offset, limit, total)
	}
}

func UpdateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var in services.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}

		review, err := r.UpdateReview(c.Request.Context(), actor, id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(review, "Review updated successfully"))
	}
}

func DeleteReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := r.DeleteReview(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Review deleted successfully"))
	}
}

func ListMyReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		reviews, err := r.ListReviewsByAuthor(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(reviews, ""))
	}
}
