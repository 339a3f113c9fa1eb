package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type TokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entity.Token
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: make(map[string]*entity.Token)}
}

func (r *TokenRepository) Find(_ context.Context, filter repository.TokenFilter) ([]*entity.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Token, 0)
	for _, t := range r.tokens {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *TokenRepository) FindByID(_ context.Context, id string) (*entity.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *TokenRepository) FindByValue(_ context.Context, value string) (*entity.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tokens {
		if t.RefreshToken == value {
			c := *t
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *TokenRepository) Create(_ context.Context, t *entity.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tokens {
		if existing.RefreshToken == t.RefreshToken {
			return repository.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = newID()
	}
	c := *t
	r.tokens[t.ID] = &c
	return nil
}

func (r *TokenRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *TokenRepository) DeleteByValue(_ context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.RefreshToken == value {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *TokenRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
