package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	repo "github.com/oksasatya/six-cities-api/internal/domain/repository"
)

const DefaultCommentLimit = 50

type CommentService struct {
	Comments repo.CommentRepository
	Offers   repo.OfferRepository
	Users    repo.UserRepository
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewCommentService(comments repo.CommentRepository, offers repo.OfferRepository, users repo.UserRepository, logger *logrus.Logger) *CommentService {
	return &CommentService{Comments: comments, Offers: offers, Users: users, Logger: logger, Now: time.Now}
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	Comment *entity.Comment
	Author  *entity.User
}

// List returns the newest comments of an existing offer. Comments whose
// author no longer exists are skipped.
func (s *CommentService) List(ctx context.Context, offerID string, limit int) ([]CommentView, error) {
	if limit <= 0 {
		limit = DefaultCommentLimit
	}
	if _, err := s.Offers.FindByID(ctx, offerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comments, err := s.Comments.FindByOfferID(ctx, offerID, limit)
	if err != nil {
		return nil, err
	}
	authors := make(map[string]*entity.User)
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		u, ok := authors[c.UserID]
		if !ok {
			u, err = s.Users.FindByID(ctx, c.UserID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, err
			}
			authors[c.UserID] = u
		}
		if u == nil {
			continue
		}
		out = append(out, CommentView{Comment: c, Author: u})
	}
	return out, nil
}

type CreateCommentInput struct {
	Text   string
	Rating int
}

// Create stores a comment on an existing offer and recomputes the offer's
// rating and comment count. Any authenticated caller may comment.
func (s *CommentService) Create(ctx context.Context, caller *Caller, offerID string, in CreateCommentInput) (*CommentView, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if _, err := s.Offers.FindByID(ctx, offerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	author, err := s.Users.FindByID(ctx, caller.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	c := &entity.Comment{
		OfferID:   offerID,
		UserID:    caller.ID,
		Text:      in.Text,
		Rating:    in.Rating,
		CreatedAt: s.now().Truncate(time.Millisecond),
	}
	if err := s.Comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.RecomputeRating(ctx, offerID); err != nil {
		return nil, err
	}
	return &CommentView{Comment: c, Author: author}, nil
}

// RecomputeRating writes round(mean(ratings), 1) and the comment count onto the offer.
// It is not atomic with the comment insert: two concurrent creates race and
// the last write wins, but each write reflects every comment stored before it.
func (s *CommentService) RecomputeRating(ctx context.Context, offerID string) error {
	stats, err := s.Comments.StatsByOfferID(ctx, offerID)
	if err != nil {
		return fmt.Errorf("comment stats of offer %s: %w", offerID, err)
	}
	rating := RoundRating(stats.Average())
	if err := s.Offers.UpdateStats(ctx, offerID, rating, stats.Count); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"offer_id": offerID, "rating": rating, "comments": stats.Count}).Debug("offer rating recomputed")
	}
	return nil
}

// RoundRating rounds to one decimal place, halves away from zero.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func (s *CommentService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
