package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/middleware"
	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusFor maps a domain error code to its HTTP status.
func statusFor(code models.ErrorCode) int {
	switch code {
	case models.ErrCodeNotFound:
		return http.StatusNotFound
	case models.ErrCodeForbidden:
		return http.StatusForbidden
	case models.ErrCodeConflict:
		return http.StatusConflict
	case models.ErrCodeInvalidState, models.ErrCodeInvalid:
		return http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for err. Internal failures are attached to
// the context for ErrorHandler to log and their details stay server side.
func respondError(c *gin.Context, err error) {
	code := models.ErrorCodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, models.CodedErrorResponse(code, "internal server error"))
		return
	}
	msg := err.Error()
	var dErr *models.Error
	// upstream causes stay out of the response except for validation detail
	if errors.As(err, &dErr) && code != models.ErrCodeInvalid {
		msg = dErr.Message
	}
	c.JSON(status, models.CodedErrorResponse(code, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.CodedErrorResponse(models.ErrCodeInvalid, msg))
}

// claimsFrom returns the caller set by the auth middleware, or nil for anonymous requests.
func claimsFrom(c *gin.Context) *helpers.EnhancedClaims {
	v, ok := c.Get(middleware.UserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*helpers.EnhancedClaims)
	return claims
}

// actorFrom is the zero Actor for anonymous callers.
func actorFrom(c *gin.Context) models.Actor {
	claims := claimsFrom(c)
	if claims == nil {
		return models.Actor{}
	}
	return models.Actor{ID: claims.UserID, Role: claims.Role}
}

// requireActor writes 401 and reports false when nobody is signed in.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor := actorFrom(c)
	if actor.IsZero() {
		c.JSON(http.StatusUnauthorized, models.CodedErrorResponse(models.ErrCodeUnauthorized, "unauthorized"))
		return actor, false
	}
	return actor, true
}

// objectIDParam parses the named path param. It trims spaces and stray quotes
// that some clients send around ids.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	if raw == "" {
		badRequest(c, name+" is required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		badRequest(c, "invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func pagination(c *gin.Context) (offset, limit int, ok bool) {
	offset, limit, err := helpers.ParsePagination(c.Query("offset"), c.Query("limit"))
	if err != nil {
		badRequest(c, err.Error())
		return 0, 0, false
	}
	return offset, limit, true
}

func paginated(c *gin.Context, data interface{}, offset, limit, total int) {
	page := (offset / limit) + 1
	c.JSON(http.StatusOK, models.PaginatedResponse(data, page, limit, total))
}
