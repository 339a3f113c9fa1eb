package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/six-cities-api/pkg/response"
	"github.com/oksasatya/six-cities-api/pkg/validation"
)

const ctxDTOKey = "dto"

// ValidateDTO binds the JSON body into a T and validates it. Invalid bodies
// get a 400 listing every failing field; valid ones are available to the
// handler through DTO[T].
func ValidateDTO[T any]() gin.HandlerFunc {
	validation.Init()
	return func(c *gin.Context) {
		dto := new(T)
		if err := c.ShouldBindJSON(dto); err != nil {
			response.Abort(c, http.StatusBadRequest, "validation failed", validation.ToErrors(err))
			return
		}
		c.Set(ctxDTOKey, dto)
		c.Next()
	}
}

// DTO returns the body bound by ValidateDTO[T], nil when none was bound.
func DTO[T any](c *gin.Context) *T {
	v, ok := c.Get(ctxDTOKey)
	if !ok {
		return nil
	}
	dto, _ := v.(*T)
	return dto
}
