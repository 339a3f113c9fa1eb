package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/six-cities-api/pkg/response"
)

// ValidateObjectID rejects the request with 400 unless path parameter
// param is a 24-character hex object id.
func ValidateObjectID(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !primitive.IsValidObjectID(c.Param(param)) {
			response.Abort(c, http.StatusBadRequest, param+" is invalid", nil)
			return
		}
		c.Next()
	}
}
