package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	order []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Favorites = cloneStrings(u.Favorites)
	return &c
}

func (r *UserRepository) Find(_ context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0)
	for _, id := range r.order {
		u := r.users[id]
		if filter.Email != "" && !strings.EqualFold(u.Email, filter.Email) {
			continue
		}
		if filter.Type != "" && u.Type != filter.Type {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.users[id]; strings.EqualFold(u.Email, entity.NormalizeEmail(email)) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = entity.NormalizeEmail(u.Email)
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	r.users[u.ID] = cloneUser(u)
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch repository.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.Type != nil {
		u.Type = *patch.Type
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return nil
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *UserRepository) AddFavorite(_ context.Context, userID, offerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if !u.HasFavorite(offerID) {
		u.Favorites = append(u.Favorites, offerID)
	}
	return nil
}

func (r *UserRepository) RemoveFavorite(_ context.Context, userID, offerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Favorites = without(u.Favorites, offerID)
	return nil
}

func (r *UserRepository) RemoveFavoriteFromAll(_ context.Context, offerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		u.Favorites = without(u.Favorites, offerID)
	}
	return nil
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

var _ repository.UserRepository = (*UserRepository)(nil)
