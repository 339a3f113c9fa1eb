package repository

import (
	"context"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

type TokenFilter struct {
	UserID string
}

// TokenRepository stores session tokens. Tokens are immutable once issued.
type TokenRepository interface {
	Find(ctx context.Context, filter TokenFilter) ([]*entity.Token, error)
	FindByID(ctx context.Context, id string) (*entity.Token, error)
	FindByValue(ctx context.Context, value string) (*entity.Token, error)
	Create(ctx context.Context, t *entity.Token) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByValue(ctx context.Context, value string) error
	DeleteByUserID(ctx context.Context, userID string) error
}
