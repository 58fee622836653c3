package repo

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gin-gorm-users/internal/core/cache"
	"gin-gorm-users/internal/domain"
)

// NewUserStore returns the gorm repository, behind the Redis cache when c is
// set. Every process that writes users must build its store here so writes
// evict what readers have cached.
func NewUserStore(db *gorm.DB, c *cache.Cache, ttl time.Duration, l *zap.Logger) domain.UserRepository {
	var users domain.UserRepository = NewUserRepo(db)
	if c == nil {
		return users
	}
	if l == nil {
		l = zap.NewNop()
	}
	return NewCachedUserRepo(users, c, ttl, l)
}
