package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/filestore"
	handlers "github.com/oksasatya/six-cities-api/internal/interface/http"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
)

// OfferModule serves /offers: listing, search, CRUD, uploads and favorites.
type OfferModule struct {
	Handler   *handlers.OfferHandler
	Auth      *application.Authorizer
	Store     filestore.Store
	MaxUpload int64
	Logger    *logrus.Logger
}

func NewOfferModule(h *handlers.OfferHandler, auth *application.Authorizer, store filestore.Store, maxUpload int64, logger *logrus.Logger) *OfferModule {
	return &OfferModule{Handler: h, Auth: auth, Store: store, MaxUpload: maxUpload, Logger: logger}
}

func (m *OfferModule) upload(field string) gin.HandlerFunc {
	return middleware.Upload(m.Store, middleware.UploadOptions{
		Field:    field,
		Dir:      filestore.DirOffers,
		Allowed:  middleware.ImageTypes,
		MaxBytes: m.MaxUpload,
	}, m.Logger)
}

func (m *OfferModule) Register(rg *gin.RouterGroup) {
	authn := middleware.Authenticate(m.Auth, m.Logger)
	byID := middleware.ValidateObjectID("offerId")
	owner := middleware.RequireOwner(m.Handler.Offers.Authorize, "offerId", "offer", m.Logger)

	g := rg.Group("/offers")
	g.GET("", authn, m.Handler.List)
	g.GET("/search", authn, m.Handler.Search)
	g.GET("/:offerId", byID, authn, m.Handler.Get)

	priv := g.Group("")
	priv.Use(authn, middleware.RequireCaller())
	{
		priv.POST("", middleware.ValidateDTO[handlers.CreateOfferDto](), m.Handler.Create)
		priv.GET("/favorites", m.Handler.Favorites)
		priv.GET("/premium/:city", m.Handler.Premium)
	}

	// Object id is checked before the caller so malformed ids never reach the store.
	owned := g.Group("/:offerId")
	owned.Use(byID, authn, middleware.RequireCaller())
	{
		owned.PATCH("", middleware.ValidateDTO[handlers.UpdateOfferDto](), m.Handler.Update)
		owned.DELETE("", m.Handler.Delete)
		owned.POST("/image", owner, m.upload("previewImage"), m.Handler.UploadPreviewImage)
		owned.POST("/photos", owner, m.upload("photos"), m.Handler.UploadPhoto)
		owned.POST("/favorite", m.Handler.AddFavorite)
		owned.DELETE("/favorite", m.Handler.RemoveFavorite)
	}
}
