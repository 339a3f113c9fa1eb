package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/pkg/response"
)

// OwnerCheck returns nil when caller may modify the resource with the given id.
type OwnerCheck func(ctx context.Context, caller *application.Caller, id string) error

// RequireOwner runs check for the id in param before any later handler
// touches the request body, so uploads to offers the caller does not own
// are rejected before they are stored.
func RequireOwner(check OwnerCheck, param, resource string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(param)
		err := check(c.Request.Context(), CallerFrom(c), id)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, application.ErrUnauthenticated):
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
		case errors.Is(err, application.ErrForbidden):
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, application.ErrNotFound):
			response.Abort(c, http.StatusNotFound, resource+" with id "+id+" not found", nil)
		default:
			logger.WithError(err).WithField("request_id", c.GetString(ctxRequestIDKey)).Error("ownership check failed")
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
		}
	}
}
