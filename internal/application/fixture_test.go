package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/memory"
	"github.com/oksasatya/six-cities-api/pkg/helpers"
)

type fixture struct {
	users    *memory.UserRepository
	tokens   *memory.TokenRepository
	offers   *memory.OfferRepository
	comments *memory.CommentRepository

	auth       *application.Authorizer
	userSvc    *application.UserService
	offerSvc   *application.OfferService
	commentSvc *application.CommentService
	jobs       *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    memory.NewUserRepository(),
		tokens:   memory.NewTokenRepository(),
		offers:   memory.NewOfferRepository(),
		comments: memory.NewCommentRepository(),
		jobs:     &recordingPublisher{},
	}
	logger := helpers.NewNopLogger()
	minter := helpers.NewTokenMinter("test-secret", time.Hour)
	f.auth = application.NewAuthorizer(f.tokens, f.users)
	f.userSvc = application.NewUserService(f.users, f.tokens, minter, "pepper", f.jobs, "six-cities", logger)
	f.offerSvc = application.NewOfferService(f.offers, f.comments, f.users, nil, logger)
	f.commentSvc = application.NewCommentService(f.comments, f.offers, f.users, logger)
	return f
}

// register creates an account and returns its caller identity and bearer token.
func (f *fixture) register(t *testing.T, email string, typ entity.UserType) (*application.Caller, string) {
	t.Helper()
	s, err := f.userSvc.Register(context.Background(), application.RegisterInput{
		Name:     "user",
		Email:    email,
		Password: "secret1",
		Type:     typ,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return &application.Caller{ID: s.User.ID, Email: s.User.Email, Type: s.User.Type}, s.Token.RefreshToken
}

func (f *fixture) createOffer(t *testing.T, caller *application.Caller, city entity.City, premium bool) *entity.Offer {
	t.Helper()
	o, err := f.offerSvc.Create(context.Background(), caller, sampleOffer(city, premium))
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	return o
}

func sampleOffer(city entity.City, premium bool) *entity.Offer {
	return &entity.Offer{
		Name:         "Cozy flat near the canal",
		Description:  "Bright two-room flat with a view over the canal.",
		City:         city,
		PreviewImage: "preview.jpg",
		Photos:       []string{"1.jpg", "2.jpg"},
		IsPremium:    premium,
		Type:         entity.HousingApartment,
		Rooms:        2,
		Guests:       3,
		Price:        120,
		Amenities:    []entity.Amenity{entity.AmenityFridge},
		Coordinates:  entity.Coordinates{Lat: 52.37, Lng: 4.89},
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}
