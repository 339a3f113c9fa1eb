package repository

import (
	"context"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

type CommentFilter struct {
	OfferID string
	UserID  string
	Limit   int
}

// CommentStats aggregates the ratings of one offer's comments.
type CommentStats struct {
	Count     int
	RatingSum int
}

// Average returns the mean rating, 0 when there are no comments.
func (s CommentStats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.Count)
}

// CommentRepository stores comments. Comments are immutable once created.
type CommentRepository interface {
	Find(ctx context.Context, filter CommentFilter) ([]*entity.Comment, error)
	FindByID(ctx context.Context, id string) (*entity.Comment, error)
	// FindByOfferID returns the newest comments of an offer first.
	FindByOfferID(ctx context.Context, offerID string, limit int) ([]*entity.Comment, error)
	Create(ctx context.Context, c *entity.Comment) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByOfferID(ctx context.Context, offerID string) error
	StatsByOfferID(ctx context.Context, offerID string) (CommentStats, error)
}
