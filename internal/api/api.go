package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/mapper"
	"github.com/foodshare/backend/internal/models"
)

// requestContext assembles the mapper request context from the gin context:
// the authenticated user when the auth middleware resolved one, and the
// request's query parameters.
func requestContext(c *gin.Context, db *gorm.DB) (mapper.RequestContext, error) {
	rc := mapper.RequestContext{Query: c.Request.URL.Query()}
	if v, exists := c.Get("user_id"); exists {
		var user models.User
		if err := db.First(&user, "id = ?", v.(uuid.UUID)).Error; err != nil {
			return rc, err
		}
		rc.User = &user
	}
	return rc, nil
}

// renderMapperError writes field-scoped validation errors as a 400 and
// reports whether err was handled.
func renderMapperError(c *gin.Context, err error) bool {
	if ve, ok := mapper.AsValidationErrors(err); ok {
		c.JSON(http.StatusBadRequest, ve)
		return true
	}
	return false
}
