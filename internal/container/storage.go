package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/config"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/memory"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/mongodb"
)

// OpenRepositories connects the backend selected by STORAGE_DRIVER.
// The returned close func releases the connection; it is never nil.
func OpenRepositories(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Repositories, func(), error) {
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		return Repositories{
			Users:    memory.NewUserRepository(),
			Tokens:   memory.NewTokenRepository(),
			Offers:   memory.NewOfferRepository(),
			Comments: memory.NewCommentRepository(),
		}, func() {}, nil
	case "mongo", "mongodb", "":
		client, err := mongodb.NewClient(ctx, cfg.MongoURI(), cfg.DBConnTimeout)
		if err != nil {
			return Repositories{}, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		if err := mongodb.RunMigrations(cfg.MigrateURL(), cfg.MigrationsDir, logger); err != nil {
			closeFn()
			return Repositories{}, nil, fmt.Errorf("migrate: %w", err)
		}
		db := client.Database(cfg.DBName)
		logger.WithField("db", cfg.DBName).Info("connected to mongodb")
		return Repositories{
			Users:    mongodb.NewUserRepository(db),
			Tokens:   mongodb.NewTokenRepository(db),
			Offers:   mongodb.NewOfferRepository(db),
			Comments: mongodb.NewCommentRepository(db),
		}, closeFn, nil
	default:
		return Repositories{}, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
