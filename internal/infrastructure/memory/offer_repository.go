package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type OfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*entity.Offer
	order  []string
}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{offers: make(map[string]*entity.Offer)}
}

func cloneOffer(o *entity.Offer) *entity.Offer {
	c := *o
	c.Photos = cloneStrings(o.Photos)
	if o.Amenities != nil {
		c.Amenities = append([]entity.Amenity(nil), o.Amenities...)
	}
	return &c
}

func matchesOffer(o *entity.Offer, f repository.OfferFilter) bool {
	if f.City != "" && o.City != f.City {
		return false
	}
	if f.PremiumOnly && !o.IsPremium {
		return false
	}
	if f.AuthorID != "" && o.AuthorID != f.AuthorID {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == o.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(o.Name + " " + o.Description + " " + string(o.City))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

func (r *OfferRepository) Find(_ context.Context, filter repository.OfferFilter) ([]*entity.Offer, error) {
	r.mu.RLock()
	out := make([]*entity.Offer, 0)
	for _, id := range r.order {
		if o := r.offers[id]; matchesOffer(o, filter) {
			out = append(out, cloneOffer(o))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishDate.After(out[j].PublishDate)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *OfferRepository) FindByID(_ context.Context, id string) (*entity.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneOffer(o), nil
}

func (r *OfferRepository) Create(_ context.Context, o *entity.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = newID()
	}
	if _, exists := r.offers[o.ID]; exists {
		return repository.ErrDuplicate
	}
	r.offers[o.ID] = cloneOffer(o)
	r.order = append(r.order, o.ID)
	return nil
}

func (r *OfferRepository) Update(_ context.Context, id string, p entity.OfferPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.City != nil {
		o.City = *p.City
	}
	if p.PreviewImage != nil {
		o.PreviewImage = *p.PreviewImage
	}
	if p.Photos != nil {
		o.Photos = cloneStrings(*p.Photos)
	}
	if p.IsPremium != nil {
		o.IsPremium = *p.IsPremium
	}
	if p.Type != nil {
		o.Type = *p.Type
	}
	if p.Rooms != nil {
		o.Rooms = *p.Rooms
	}
	if p.Guests != nil {
		o.Guests = *p.Guests
	}
	if p.Price != nil {
		o.Price = *p.Price
	}
	if p.Amenities != nil {
		o.Amenities = append([]entity.Amenity(nil), (*p.Amenities)...)
	}
	if p.Coordinates != nil {
		o.Coordinates = *p.Coordinates
	}
	return nil
}

func (r *OfferRepository) UpdateStats(_ context.Context, id string, rating float64, commentsCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Rating = rating
	o.CommentsCount = commentsCount
	return nil
}

func (r *OfferRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[id]; !ok {
		return nil
	}
	delete(r.offers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *OfferRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Offer, error) {
	if len(ids) == 0 {
		return []*entity.Offer{}, nil
	}
	return r.Find(ctx, repository.OfferFilter{IDs: ids})
}

var _ repository.OfferRepository = (*OfferRepository)(nil)
