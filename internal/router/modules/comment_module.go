package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	handlers "github.com/oksasatya/six-cities-api/internal/interface/http"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
)

type CommentModule struct {
	Handler *handlers.CommentHandler
	Auth    *application.Authorizer
	Logger  *logrus.Logger
}

func NewCommentModule(h *handlers.CommentHandler, auth *application.Authorizer, logger *logrus.Logger) *CommentModule {
	return &CommentModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *CommentModule) Register(rg *gin.RouterGroup) {
	byID := middleware.ValidateObjectID("offerId")

	rg.GET("/offers/:offerId/comments", byID, m.Handler.List)
	rg.POST("/offers/:offerId/comments",
		byID,
		middleware.Authenticate(m.Auth, m.Logger),
		middleware.RequireCaller(),
		middleware.ValidateDTO[handlers.CreateCommentDto](),
		m.Handler.Create,
	)
}
