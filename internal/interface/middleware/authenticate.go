package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/pkg/response"
)

const (
	ctxCallerKey = "caller"
	ctxBearerKey = "bearer_token"
)

// Authenticate resolves the caller once per request and stores it in the
// context. It never rejects a request on its own; RequireCaller does.
func Authenticate(auth *application.Authorizer, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		caller, err := auth.ResolveCaller(c.Request.Context(), header)
		if err != nil {
			logger.WithError(err).WithField("request_id", c.GetString(ctxRequestIDKey)).Error("resolve caller failed")
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		if caller != nil {
			token, _ := application.BearerToken(header)
			c.Set(ctxCallerKey, caller)
			c.Set(ctxBearerKey, token)
		}
		c.Next()
	}
}

// RequireCaller aborts with 401 unless Authenticate resolved a caller.
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerFrom(c) == nil {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		c.Next()
	}
}

// CallerFrom returns the resolved caller, nil for anonymous requests.
func CallerFrom(c *gin.Context) *application.Caller {
	v, ok := c.Get(ctxCallerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*application.Caller)
	return caller
}

// BearerFrom returns the token value the caller authenticated with.
func BearerFrom(c *gin.Context) string {
	return c.GetString(ctxBearerKey)
}
