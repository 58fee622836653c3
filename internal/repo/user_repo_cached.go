package repo

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gin-gorm-users/internal/core/cache"
	"gin-gorm-users/internal/domain"
)

// CachedUserRepo serves FindByID from Redis and drops the entry on every write
// that could change what FindByID returns.
type CachedUserRepo struct {
	domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedUserRepo(next domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedUserRepo {
	return &CachedUserRepo{UserRepository: next, cache: c, ttl: ttl, log: l}
}

func userKey(id uint) string { return "user:" + strconv.FormatUint(uint64(id), 10) }

func (r *CachedUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return cache.GetOrLoadJSON(r.cache, ctx, userKey(id), r.ttl, func(ctx context.Context) (*domain.User, error) {
		return r.UserRepository.FindByID(ctx, id)
	})
}

// Create also evicts: a miss for the new id may already be cached as null.
func (r *CachedUserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Create(ctx, u); err != nil {
		return err
	}
	r.evict(ctx, u.ID)
	return nil
}

func (r *CachedUserRepo) Update(ctx context.Context, u *domain.User) error {
	err := r.UserRepository.Update(ctx, u)
	r.evict(ctx, u.ID)
	return err
}

func (r *CachedUserRepo) Delete(ctx context.Context, u *domain.User) error {
	err := r.UserRepository.Delete(ctx, u)
	r.evict(ctx, u.ID)
	return err
}

func (r *CachedUserRepo) evict(ctx context.Context, id uint) {
	if err := r.cache.Delete(ctx, userKey(id)); err != nil {
		r.log.Warn("user cache evict failed", zap.Uint("id", id), zap.Error(err))
	}
}
