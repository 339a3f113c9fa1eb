package repository

import (
	"context"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

type UserFilter struct {
	Email string
	Type  entity.UserType
}

// UserPatch holds the user fields that may change after registration.
type UserPatch struct {
	Name   *string
	Avatar *string
	Type   *entity.UserType
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Find(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, id string, patch UserPatch) error
	DeleteByID(ctx context.Context, id string) error

	AddFavorite(ctx context.Context, userID, offerID string) error
	RemoveFavorite(ctx context.Context, userID, offerID string) error
	// RemoveFavoriteFromAll drops offerID from every user's favorites.
	RemoveFavoriteFromAll(ctx context.Context, offerID string) error
}
