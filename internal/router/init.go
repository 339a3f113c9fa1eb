package router

import (
	"github.com/oksasatya/six-cities-api/internal/container"
	handlers "github.com/oksasatya/six-cities-api/internal/interface/http"
	"github.com/oksasatya/six-cities-api/internal/router/modules"
)

// InitModules wires every feature module from the container into the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	r.Add(modules.NewOfferModule(
		handlers.NewOfferHandler(c.OfferService, c.Logger),
		c.Authorizer, c.Store, cfg.UploadMaxBytes, c.Logger,
	))
	r.Add(modules.NewCommentModule(
		handlers.NewCommentHandler(c.CommentService, c.Logger),
		c.Authorizer, c.Logger,
	))
	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(c.UserService, c.Logger),
		c.Authorizer, c.Store, c.Redis, cfg.RateLimitEnabled, cfg.UploadMaxBytes, c.Logger,
	))
	if cfg.UploadDir != "" && cfg.GCSBucket == "" {
		r.Add(modules.NewStaticModule(cfg.StaticPrefix, cfg.UploadDir))
	}
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
