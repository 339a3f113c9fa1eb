package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/pkg/mailer"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, _ := f.register(t, "a@x.com", entity.UserTypeUsual)

	_, err := f.userSvc.Register(ctx, application.RegisterInput{
		Name: "other", Email: "a@x.com", Password: "another1", Type: entity.UserTypePro,
	})
	if !errors.Is(err, application.ErrConflict) {
		t.Fatalf("second register: got %v, want ErrConflict", err)
	}

	u, err := f.users.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != first.ID || u.Name != "user" || u.Type != entity.UserTypeUsual {
		t.Fatalf("first user changed: %+v", u)
	}
	if _, err := f.userSvc.Login(ctx, "a@x.com", "secret1", ""); err != nil {
		t.Fatalf("first user can no longer log in: %v", err)
	}
}

func TestRegisterQueuesWelcomeEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "a@x.com", entity.UserTypeUsual)
	if f.jobs.count() != 1 {
		t.Fatalf("queued %d jobs, want 1", f.jobs.count())
	}
	job, ok := f.jobs.jobs[0].(mailer.EmailJob)
	if !ok || job.To != "a@x.com" {
		t.Fatalf("unexpected job %#v", f.jobs.jobs[0])
	}
}

func TestRegisterSurvivesBrokerFailure(t *testing.T) {
	f := newFixture(t)
	f.jobs.err = errors.New("broker down")
	caller, token := f.register(t, "a@x.com", entity.UserTypeUsual)
	if caller.ID == "" || token == "" {
		t.Fatal("registration should succeed without the broker")
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", entity.UserTypeUsual)

	s, err := f.userSvc.Login(ctx, "a@x.com", "secret1", "test-agent")
	if err != nil {
		t.Fatal(err)
	}
	if s.Token.RefreshToken == "" || s.Token.UserAgent != "test-agent" {
		t.Fatalf("unexpected token %+v", s.Token)
	}

	if _, err := f.userSvc.Login(ctx, "a@x.com", "wrong-pw", ""); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := f.userSvc.Login(ctx, "nobody@x.com", "secret1", ""); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller, first := f.register(t, "a@x.com", entity.UserTypeUsual)
	s, err := f.userSvc.Login(ctx, "a@x.com", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	second := s.Token.RefreshToken

	if err := f.userSvc.Logout(ctx, caller, first); err != nil {
		t.Fatal(err)
	}
	if got, _ := f.auth.ResolveCaller(ctx, "Bearer "+first); got != nil {
		t.Error("logged out token still resolves")
	}
	if got, _ := f.auth.ResolveCaller(ctx, "Bearer "+second); got == nil {
		t.Error("other session was revoked")
	}
	if err := f.userSvc.Logout(ctx, nil, second); !errors.Is(err, application.ErrUnauthenticated) {
		t.Errorf("anonymous logout: %v", err)
	}
}

func TestUpdateAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller, _ := f.register(t, "a@x.com", entity.UserTypeUsual)

	u, err := f.userSvc.UpdateAvatar(ctx, caller, "/uploads/avatars/a.png")
	if err != nil {
		t.Fatal(err)
	}
	if u.Avatar != "/uploads/avatars/a.png" {
		t.Fatalf("avatar = %q", u.Avatar)
	}
	if _, err := f.userSvc.UpdateAvatar(ctx, nil, "x"); !errors.Is(err, application.ErrUnauthenticated) {
		t.Errorf("anonymous: %v", err)
	}
}

func TestRegisterEmailIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.userSvc.Register(ctx, application.RegisterInput{
		Name: "Ann", Email: " Ann@X.com ", Password: "secret1", Type: entity.UserTypeUsual,
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.User.Email != "ann@x.com" {
		t.Fatalf("stored email = %q", s.User.Email)
	}

	_, err = f.userSvc.Register(ctx, application.RegisterInput{
		Name: "Imposter", Email: "ann@x.com", Password: "secret1", Type: entity.UserTypePro,
	})
	if !errors.Is(err, application.ErrConflict) {
		t.Fatalf("lowercase duplicate: got %v, want ErrConflict", err)
	}
	if _, err := f.userSvc.Login(ctx, "ANN@x.COM", "secret1", ""); err != nil {
		t.Fatalf("login with other case: %v", err)
	}
}
