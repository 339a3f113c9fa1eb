package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/pkg/response"
)

// respondError is the single place where application errors become HTTP statuses.
// Anything unrecognised is logged and reported as a bare 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, application.ErrUnauthenticated):
		response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Abort(c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, application.ErrForbidden):
		response.Abort(c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, application.ErrNotFound):
		if notFound == "" {
			notFound = "not found"
		}
		response.Abort(c, http.StatusNotFound, notFound, nil)
	case errors.Is(err, application.ErrConflict):
		response.Abort(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCity):
		response.Abort(c, http.StatusBadRequest, "invalid city. Must be one of: "+cityList(), nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Error("request failed")
		response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func cityList() string {
	names := make([]string, 0, len(entity.Cities))
	for _, c := range entity.Cities {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
