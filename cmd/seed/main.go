package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/config"
	"github.com/oksasatya/six-cities-api/internal/container"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	repo "github.com/oksasatya/six-cities-api/internal/domain/repository"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/search"
	"github.com/oksasatya/six-cities-api/pkg/helpers"
)

func main() {
	file := flag.String("file", "", "TSV file with offers to import (first line is a header)")
	email := flag.String("email", "host@six-cities.local", "email of the demo pro user owning imported offers")
	password := flag.String("password", "secret1", "password of the demo pro user")
	count := flag.Int("generate", 0, "write N offers fetched from -url to -out instead of importing")
	mockURL := flag.String("url", "", "base URL of the mock offer server (used with -generate)")
	out := flag.String("out", "", "import file to write (used with -generate; stdout when empty)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if *count > 0 {
		if err := runGenerate(*count, *mockURL, *out); err != nil {
			logger.Fatalf("generate: %v", err)
		}
		logger.WithFields(logrus.Fields{"offers": *count, "out": *out}).Info("generate finished")
		return
	}
	if cfg.StorageDriver == "memory" {
		logger.Fatal("seeding needs a persistent STORAGE_DRIVER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repos, closeRepos, err := container.OpenRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}
	defer closeRepos()

	host, err := ensureUser(ctx, repos.Users, cfg.Salt, *email, *password)
	if err != nil {
		logger.Fatalf("seed user: %v", err)
	}
	logger.WithFields(logrus.Fields{"user_id": host.ID, "email": host.Email}).Info("seeded pro user")

	if *file == "" {
		return
	}
	f, err := os.Open(*file)
	if err != nil {
		logger.Fatalf("open %s: %v", *file, err)
	}
	defer func() { _ = f.Close() }()

	rows, errs := readTSV(f)
	for _, e := range errs {
		logger.WithError(e).Warn("skipped line")
	}

	var index *search.OfferIndex
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		if es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass); err == nil {
			index = search.NewOfferIndex(es, cfg.ESOffersIndex)
		}
	}

	imported := 0
	for _, row := range rows {
		authorID := host.ID
		if row.AuthorEmail != "" && row.AuthorEmail != host.Email {
			if u, err := repos.Users.FindByEmail(ctx, row.AuthorEmail); err == nil {
				authorID = u.ID
			}
		}
		o := row.Offer.ToEntity()
		o.AuthorID = authorID
		o.PublishDate = row.PublishDate
		if err := repos.Offers.Create(ctx, o); err != nil {
			logger.WithError(err).WithField("line", row.Line).Error("insert offer failed")
			continue
		}
		if index != nil {
			if err := index.Index(ctx, o); err != nil {
				logger.WithError(err).WithField("offer_id", o.ID).Warn("index offer failed")
			}
		}
		imported++
	}
	logger.WithFields(logrus.Fields{"imported": imported, "skipped": len(errs)}).Info("import finished")
}

func runGenerate(n int, url, path string) error {
	if url == "" {
		return errors.New("-url is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	g := &generator{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: url,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	return g.generate(ctx, n, w)
}

// ensureUser returns the pro user with the given email, creating it when missing.
func ensureUser(ctx context.Context, users repo.UserRepository, salt, email, password string) (*entity.User, error) {
	u, err := users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	hash, err := helpers.HashPassword(password, salt)
	if err != nil {
		return nil, err
	}
	u = &entity.User{
		Email:        email,
		Name:         "Demo Host",
		PasswordHash: hash,
		Type:         entity.UserTypePro,
		Favorites:    []string{},
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
