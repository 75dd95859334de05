package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/services"
)

func CreateSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var spot models.TouristSpot
		if err := c.ShouldBindJSON(&spot); err != nil {
			badRequest(c, err.Error())
			return
		}

		created, err := s.CreateSpot(c.Request.Context(), actor, &spot)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Tourist spot created successfully"))
	}
}

func ListSpots(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		region := strings.TrimSpace(c.Query("region"))

		spots, total, err := s.ListSpots(c.Request.Context(), region, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, spots, offset, limit, total)
	}
}

func GetSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		spot, err := s.GetSpot(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(spot, ""))
	}
}

func UpdateSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var upd models.SpotUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, err.Error())
			return
		}

		spot, err := s.UpdateSpot(c.Request.Context(), actor, id, upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(spot, "Tourist spot updated successfully"))
	}
}

func DeleteSpot(s *services.SpotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := s.DeleteSpot(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Tourist spot deleted successfully"))
	}
}
