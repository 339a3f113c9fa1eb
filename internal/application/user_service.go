package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	repo "github.com/oksasatya/six-cities-api/internal/domain/repository"
	"github.com/oksasatya/six-cities-api/pkg/helpers"
	"github.com/oksasatya/six-cities-api/pkg/mailer"
	mailtpl "github.com/oksasatya/six-cities-api/pkg/mailer/templates"
)

// JobPublisher queues background jobs. helpers.RabbitPublisher implements it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type UserService struct {
	Users   repo.UserRepository
	Tokens  repo.TokenRepository
	Minter  *helpers.TokenMinter
	Salt    string
	Jobs    JobPublisher // optional
	AppName string
	Logger  *logrus.Logger
	Now     func() time.Time
}

func NewUserService(users repo.UserRepository, tokens repo.TokenRepository, minter *helpers.TokenMinter, salt string, jobs JobPublisher, appName string, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:   users,
		Tokens:  tokens,
		Minter:  minter,
		Salt:    salt,
		Jobs:    jobs,
		AppName: appName,
		Logger:  logger,
		Now:     time.Now,
	}
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Type      entity.UserType
	IP        string
	UserAgent string
}

// Session is a freshly issued token together with its user.
type Session struct {
	User  *entity.User
	Token *entity.Token
}

func (s *UserService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Register creates the account and signs it in.
// A taken email is ErrConflict and leaves the existing account untouched.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := entity.NormalizeEmail(in.Email)
	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user with email %s already exists: %w", email, ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password, s.Salt)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	typ := in.Type
	if typ == "" {
		typ = entity.UserTypeUsual
	}
	u := &entity.User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		Type:         typ,
		Favorites:    []string{},
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("user with email %s already exists: %w", email, ErrConflict)
		}
		return nil, err
	}

	tok, err := s.issueToken(ctx, u, in.UserAgent)
	if err != nil {
		return nil, err
	}
	s.queueWelcome(ctx, u, in.IP, in.UserAgent)
	return &Session{User: u, Token: tok}, nil
}

// Login checks the credentials and issues a new token.
// Unknown email and wrong password are both ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password, userAgent string) (*Session, error) {
	u, err := s.Users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password, s.Salt) {
		return nil, ErrInvalidCredentials
	}
	tok, err := s.issueToken(ctx, u, userAgent)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: tok}, nil
}

func (s *UserService) issueToken(ctx context.Context, u *entity.User, userAgent string) (*entity.Token, error) {
	now := s.now()
	value, exp, err := s.Minter.Mint(u.ID, now)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("mint token failed")
		}
		return nil, err
	}
	tok := &entity.Token{
		UserID:       u.ID,
		RefreshToken: value,
		CreatedAt:    now,
		ExpiresAt:    exp,
		UserAgent:    userAgent,
	}
	if err := s.Tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return tok, nil
}

// queueWelcome is best effort: a broker failure never fails the registration.
func (s *UserService) queueWelcome(ctx context.Context, u *entity.User, ip, userAgent string) {
	if s.Jobs == nil {
		return
	}
	job := mailer.NewWelcomeJob(s.AppName, u.Name, u.Email, string(u.Type),
		mailtpl.WithTime(u.CreatedAt), mailtpl.WithIP(ip), mailtpl.WithUserAgent(userAgent))
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Jobs.PublishJSON(c, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("queue welcome email failed")
	}
}

// Logout revokes the presented token only; other sessions of the user stay valid.
func (s *UserService) Logout(ctx context.Context, caller *Caller, tokenValue string) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	return s.Tokens.DeleteByValue(ctx, tokenValue)
}

// Profile returns the caller's user record.
func (s *UserService) Profile(ctx context.Context, caller *Caller) (*entity.User, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.Users.FindByID(ctx, caller.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

// UpdateAvatar stores the uploaded avatar URL on the caller's record.
func (s *UserService) UpdateAvatar(ctx context.Context, caller *Caller, url string) (*entity.User, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.Users.Update(ctx, caller.ID, repo.UserPatch{Avatar: &url}); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return s.Users.FindByID(ctx, caller.ID)
}
