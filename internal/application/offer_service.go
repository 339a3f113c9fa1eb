package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	repo "github.com/oksasatya/six-cities-api/internal/domain/repository"
)

const (
	DefaultOfferLimit  = 60
	DefaultSearchLimit = 20
	MaxOfferPhotos     = 6
)

// OfferIndex is an optional full-text index over offers.
type OfferIndex interface {
	Index(ctx context.Context, o *entity.Offer) error
	Delete(ctx context.Context, id string) error
	// Search returns matching offer ids, best match first.
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type OfferService struct {
	Offers   repo.OfferRepository
	Comments repo.CommentRepository
	Users    repo.UserRepository
	Index    OfferIndex // optional
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewOfferService(offers repo.OfferRepository, comments repo.CommentRepository, users repo.UserRepository, index OfferIndex, logger *logrus.Logger) *OfferService {
	return &OfferService{Offers: offers, Comments: comments, Users: users, Index: index, Logger: logger, Now: time.Now}
}

// List returns the newest offers, at most limit (DefaultOfferLimit when limit <= 0).
func (s *OfferService) List(ctx context.Context, caller *Caller, limit int) ([]*entity.Offer, error) {
	if limit <= 0 {
		limit = DefaultOfferLimit
	}
	offers, err := s.Offers.Find(ctx, repo.OfferFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	return offers, s.markFavorites(ctx, caller, offers...)
}

// Premium lists premium offers of city. Pro accounts only; the account check runs before the city check.
func (s *OfferService) Premium(ctx context.Context, caller *Caller, city string) ([]*entity.Offer, error) {
	if err := RequireAccountType(caller, entity.UserTypePro).Err(); err != nil {
		return nil, err
	}
	c := entity.City(city)
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCity, city)
	}
	offers, err := s.Offers.Find(ctx, repo.OfferFilter{City: c, PremiumOnly: true})
	if err != nil {
		return nil, err
	}
	return offers, s.markFavorites(ctx, caller, offers...)
}

// Search looks offers up in the full-text index, falling back to a
// repository substring match when no index is configured or it fails.
func (s *OfferService) Search(ctx context.Context, caller *Caller, query string, limit int) ([]*entity.Offer, error) {
	if limit <= 0 || limit > DefaultOfferLimit {
		limit = DefaultSearchLimit
	}
	offers, err := s.searchIndex(ctx, query, limit)
	if err != nil || offers == nil {
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("offer index search failed, using repository")
		}
		offers, err = s.Offers.Find(ctx, repo.OfferFilter{Query: query, Limit: limit})
		if err != nil {
			return nil, err
		}
	}
	return offers, s.markFavorites(ctx, caller, offers...)
}

func (s *OfferService) searchIndex(ctx context.Context, query string, limit int) ([]*entity.Offer, error) {
	if s.Index == nil {
		return nil, nil
	}
	ids, err := s.Index.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	found, err := s.Offers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// keep relevance order
	byID := make(map[string]*entity.Offer, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}
	out := make([]*entity.Offer, 0, len(found))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// Get returns one offer and its author. The author is nil when the account no longer exists.
func (s *OfferService) Get(ctx context.Context, caller *Caller, id string) (*entity.Offer, *entity.User, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.markFavorites(ctx, caller, o); err != nil {
		return nil, nil, err
	}
	author, err := s.Host(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	return o, author, nil
}

// Host returns the offer's author, nil when the account no longer exists.
func (s *OfferService) Host(ctx context.Context, o *entity.Offer) (*entity.User, error) {
	author, err := s.Users.FindByID(ctx, o.AuthorID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return author, err
}

// Create publishes a new offer authored by caller. Derived fields start at zero.
func (s *OfferService) Create(ctx context.Context, caller *Caller, o *entity.Offer) (*entity.Offer, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	o.ID = ""
	o.AuthorID = caller.ID
	o.PublishDate = s.now().Truncate(time.Millisecond)
	o.Rating = 0
	o.CommentsCount = 0
	o.IsFavorite = false
	if err := s.Offers.Create(ctx, o); err != nil {
		return nil, err
	}
	s.index(ctx, o)
	return o, nil
}

// Update applies patch to an offer owned by caller.
func (s *OfferService) Update(ctx context.Context, caller *Caller, id string, patch entity.OfferPatch) (*entity.Offer, error) {
	if _, err := s.authorize(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := s.Offers.Update(ctx, id, patch); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.reload(ctx, caller, id)
}

// Delete removes an offer owned by caller together with its comments
// and every user's favorite reference to it.
func (s *OfferService) Delete(ctx context.Context, caller *Caller, id string) error {
	if _, err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	if err := s.Offers.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.Comments.DeleteByOfferID(ctx, id); err != nil {
		return fmt.Errorf("delete comments of offer %s: %w", id, err)
	}
	if err := s.Users.RemoveFavoriteFromAll(ctx, id); err != nil {
		return fmt.Errorf("drop favorites of offer %s: %w", id, err)
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("offer_id", id).Warn("offer index delete failed")
		}
	}
	return nil
}

// SetPreviewImage replaces the preview image of an offer owned by caller.
func (s *OfferService) SetPreviewImage(ctx context.Context, caller *Caller, id, url string) (*entity.Offer, error) {
	return s.Update(ctx, caller, id, entity.OfferPatch{PreviewImage: &url})
}

// AddPhoto appends a photo to an offer owned by caller, dropping the oldest
// once MaxOfferPhotos is reached.
func (s *OfferService) AddPhoto(ctx context.Context, caller *Caller, id, url string) (*entity.Offer, error) {
	o, err := s.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	photos := append(append([]string(nil), o.Photos...), url)
	if len(photos) > MaxOfferPhotos {
		photos = photos[len(photos)-MaxOfferPhotos:]
	}
	if err := s.Offers.Update(ctx, id, entity.OfferPatch{Photos: &photos}); err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.reload(ctx, caller, id)
}

// Favorites lists the caller's favorite offers.
func (s *OfferService) Favorites(ctx context.Context, caller *Caller) ([]*entity.Offer, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.Users.FindByID(ctx, caller.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	offers, err := s.Offers.FindByIDs(ctx, u.Favorites)
	if err != nil {
		return nil, err
	}
	for _, o := range offers {
		o.IsFavorite = true
	}
	return offers, nil
}

// SetFavorite adds or removes an existing offer from the caller's favorites.
func (s *OfferService) SetFavorite(ctx context.Context, caller *Caller, id string, favorite bool) (*entity.Offer, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if favorite {
		err = s.Users.AddFavorite(ctx, caller.ID, id)
	} else {
		err = s.Users.RemoveFavorite(ctx, caller.ID, id)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	o.IsFavorite = favorite
	return o, nil
}

// Authorize reports whether caller may modify offer id, without changing anything.
func (s *OfferService) Authorize(ctx context.Context, caller *Caller, id string) error {
	_, err := s.authorize(ctx, caller, id)
	return err
}

// authorize runs the ownership pipeline: caller, then existence, then owner.
func (s *OfferService) authorize(ctx context.Context, caller *Caller, id string) (*entity.Offer, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	o, err := s.find(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := RequireOwnership(o, caller).Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// find returns (nil, ErrNotFound) for a missing offer.
func (s *OfferService) find(ctx context.Context, id string) (*entity.Offer, error) {
	o, err := s.Offers.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return o, nil
}

func (s *OfferService) reload(ctx context.Context, caller *Caller, id string) (*entity.Offer, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, o)
	return o, s.markFavorites(ctx, caller, o)
}

func (s *OfferService) mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// markFavorites sets IsFavorite from the caller's favorites; anonymous callers see false.
func (s *OfferService) markFavorites(ctx context.Context, caller *Caller, offers ...*entity.Offer) error {
	for _, o := range offers {
		o.IsFavorite = false
	}
	if caller == nil || len(offers) == 0 {
		return nil
	}
	u, err := s.Users.FindByID(ctx, caller.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, o := range offers {
		o.IsFavorite = u.HasFavorite(o.ID)
	}
	return nil
}

func (s *OfferService) index(ctx context.Context, o *entity.Offer) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, o); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("offer_id", o.ID).Warn("offer index failed")
	}
}

func (s *OfferService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
