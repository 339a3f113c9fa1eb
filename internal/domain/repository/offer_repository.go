package repository

import (
	"context"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

// OfferFilter narrows Find. Zero values mean "no constraint".
// Results are ordered by publish date, newest first.
type OfferFilter struct {
	City        entity.City
	PremiumOnly bool
	AuthorID    string
	IDs         []string
	Query       string // case-insensitive substring of name, description or city
	Limit       int
}

type OfferRepository interface {
	Find(ctx context.Context, filter OfferFilter) ([]*entity.Offer, error)
	FindByID(ctx context.Context, id string) (*entity.Offer, error)
	// FindByIDs returns the offers among ids that exist; an empty ids yields no offers.
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Offer, error)
	Create(ctx context.Context, o *entity.Offer) error
	Update(ctx context.Context, id string, patch entity.OfferPatch) error
	// UpdateStats overwrites the derived rating and comment count.
	UpdateStats(ctx context.Context, id string, rating float64, commentsCount int) error
	DeleteByID(ctx context.Context, id string) error
}
