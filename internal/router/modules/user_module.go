package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/filestore"
	handlers "github.com/oksasatya/six-cities-api/internal/interface/http"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
)

// UserModule wires account routes.
// Public: POST /users/registry, POST /users/login
// Protected: DELETE /users/login, GET /users/check, POST /users/avatar
type UserModule struct {
	Handler   *handlers.UserHandler
	Auth      *application.Authorizer
	Store     filestore.Store
	Redis     *redis.Client
	MaxUpload int64
	Logger    *logrus.Logger
}

// NewUserModule builds the module. Rate limiting is skipped when disabled or Redis is absent.
func NewUserModule(h *handlers.UserHandler, auth *application.Authorizer, store filestore.Store, rdb *redis.Client, rateLimit bool, maxUpload int64, logger *logrus.Logger) *UserModule {
	if !rateLimit {
		rdb = nil
	}
	return &UserModule{Handler: h, Auth: auth, Store: store, Redis: rdb, MaxUpload: maxUpload, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registryLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	g := rg.Group("/users")
	g.POST("/registry", registryLimiter, middleware.ValidateDTO[handlers.CreateUserDto](), m.Handler.Register)
	g.POST("/login", loginLimiter, middleware.ValidateDTO[handlers.LoginUserDto](), m.Handler.Login)

	auth := g.Group("")
	auth.Use(
		middleware.Authenticate(m.Auth, m.Logger),
		middleware.RequireCaller(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByCaller(), nil),
	)
	{
		auth.DELETE("/login", m.Handler.Logout)
		auth.GET("/check", m.Handler.Check)
		auth.POST("/avatar", middleware.Upload(m.Store, middleware.UploadOptions{
			Field:    "avatar",
			Dir:      filestore.DirAvatars,
			Allowed:  middleware.AvatarTypes,
			MaxBytes: m.MaxUpload,
		}, m.Logger), m.Handler.UploadAvatar)
	}
}
