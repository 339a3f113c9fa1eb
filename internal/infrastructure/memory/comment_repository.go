package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type CommentRepository struct {
	mu       sync.RWMutex
	comments []*entity.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{}
}

func (r *CommentRepository) Find(_ context.Context, filter repository.CommentFilter) ([]*entity.Comment, error) {
	r.mu.RLock()
	out := make([]*entity.Comment, 0)
	for _, c := range r.comments {
		if filter.OfferID != "" && c.OfferID != filter.OfferID {
			continue
		}
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	// newest first; insertion order breaks ties between equal timestamps
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *CommentRepository) FindByID(_ context.Context, id string) (*entity.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CommentRepository) FindByOfferID(ctx context.Context, offerID string, limit int) ([]*entity.Comment, error) {
	return r.Find(ctx, repository.CommentFilter{OfferID: offerID, Limit: limit})
}

func (r *CommentRepository) Create(_ context.Context, c *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	cp := *c
	r.comments = append(r.comments, &cp)
	return nil
}

func (r *CommentRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = filterComments(r.comments, func(c *entity.Comment) bool { return c.ID != id })
	return nil
}

func (r *CommentRepository) DeleteByOfferID(_ context.Context, offerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = filterComments(r.comments, func(c *entity.Comment) bool { return c.OfferID != offerID })
	return nil
}

func (r *CommentRepository) StatsByOfferID(_ context.Context, offerID string) (repository.CommentStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s repository.CommentStats
	for _, c := range r.comments {
		if c.OfferID == offerID {
			s.Count++
			s.RatingSum += c.Rating
		}
	}
	return s, nil
}

func filterComments(in []*entity.Comment, keep func(*entity.Comment) bool) []*entity.Comment {
	out := in[:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
