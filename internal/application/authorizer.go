package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	repo "github.com/oksasatya/six-cities-api/internal/domain/repository"
)

// Caller is the identity resolved from a bearer token.
type Caller struct {
	ID    string
	Email string
	Type  entity.UserType
}

// Authorizer resolves callers from bearer tokens. It only ever reads.
type Authorizer struct {
	Tokens repo.TokenRepository
	Users  repo.UserRepository
	Now    func() time.Time
}

func NewAuthorizer(tokens repo.TokenRepository, users repo.UserRepository) *Authorizer {
	return &Authorizer{Tokens: tokens, Users: users, Now: time.Now}
}

// BearerToken extracts the token from an Authorization header of the form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// ResolveCaller maps an Authorization header to a caller.
// Every miss (no header, malformed header, unknown or expired token,
// dangling user) yields (nil, nil); only storage failures are errors.
func (a *Authorizer) ResolveCaller(ctx context.Context, authorizationHeader string) (*Caller, error) {
	value, ok := BearerToken(authorizationHeader)
	if !ok {
		return nil, nil
	}
	tok, err := a.Tokens.FindByValue(ctx, value)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	if tok.Expired(a.now()) {
		return nil, nil
	}
	u, err := a.Users.FindByID(ctx, tok.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find token owner: %w", err)
	}
	return &Caller{ID: u.ID, Email: u.Email, Type: u.Type}, nil
}

func (a *Authorizer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Owned is a resource that only its owner may mutate.
type Owned interface {
	OwnerID() string
}

type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonNotFound        Reason = "not_found"
	ReasonForbidden       Reason = "forbidden"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allowed = Decision{Allowed: true}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Err maps a denial to the matching application error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonNotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}

// RequireOwnership checks, in order: caller present, resource present, caller owns resource.
func RequireOwnership(resource Owned, caller *Caller) Decision {
	if caller == nil {
		return deny(ReasonUnauthenticated)
	}
	if isNil(resource) {
		return deny(ReasonNotFound)
	}
	if resource.OwnerID() != caller.ID {
		return deny(ReasonForbidden)
	}
	return allowed
}

// RequireAccountType denies callers whose account tier is not t.
func RequireAccountType(caller *Caller, t entity.UserType) Decision {
	if caller == nil {
		return deny(ReasonUnauthenticated)
	}
	if caller.Type != t {
		return deny(ReasonForbidden)
	}
	return allowed
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
