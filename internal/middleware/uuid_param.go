package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// UUIDParam answers 404 when a route parameter is not a UUID, so malformed ids never reach the database.
func UUIDParam(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			if _, err := uuid.Parse(c.Param(name)); err != nil {
				response.Error(c, appErrors.ErrNotFound)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
