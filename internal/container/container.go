package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/config"
	"github.com/oksasatya/six-cities-api/internal/application"
	repo "github.com/oksasatya/six-cities-api/internal/domain/repository"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/filestore"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/search"
	"github.com/oksasatya/six-cities-api/pkg/helpers"
)

// Container holds the components shared by the router modules.
// Optional clients (Redis, ES, RabbitMQ) stay nil when unconfigured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users    repo.UserRepository
	Tokens   repo.TokenRepository
	Offers   repo.OfferRepository
	Comments repo.CommentRepository

	Store  filestore.Store
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher
	Minter *helpers.TokenMinter

	Authorizer     *application.Authorizer
	UserService    *application.UserService
	OfferService   *application.OfferService
	CommentService *application.CommentService
}

// Repositories groups the storage backend chosen at startup.
type Repositories struct {
	Users    repo.UserRepository
	Tokens   repo.TokenRepository
	Offers   repo.OfferRepository
	Comments repo.CommentRepository
}

// New builds the services on top of the given repositories and clients.
// Clients must already be set on c.
func New(c *Container, r Repositories) *Container {
	c.Users, c.Tokens, c.Offers, c.Comments = r.Users, r.Tokens, r.Offers, r.Comments
	if c.Minter == nil {
		c.Minter = helpers.NewTokenMinter(c.Config.TokenSecret, c.Config.TokenTTL)
	}

	var jobs application.JobPublisher
	if c.Rabbit != nil && c.Config.MailSendEnabled {
		jobs = c.Rabbit
	}
	var index application.OfferIndex
	if c.ES != nil {
		index = search.NewOfferIndex(c.ES, c.Config.ESOffersIndex)
	}

	c.Authorizer = application.NewAuthorizer(c.Tokens, c.Users)
	c.UserService = application.NewUserService(c.Users, c.Tokens, c.Minter, c.Config.Salt, jobs, c.Config.AppName, c.Logger)
	c.OfferService = application.NewOfferService(c.Offers, c.Comments, c.Users, index, c.Logger)
	c.CommentService = application.NewCommentService(c.Comments, c.Offers, c.Users, c.Logger)
	return c
}
