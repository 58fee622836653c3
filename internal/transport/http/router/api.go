package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gin-gorm-users/internal/core/server"
	"gin-gorm-users/internal/transport/http/handler"
	mdw "gin-gorm-users/internal/transport/http/middleware"
	resp "gin-gorm-users/internal/transport/http/response"
)

type Limits struct {
	RatePerSec      float64
	RateBurst       int
	PerIPRatePerSec float64 // 0 disables the per-IP bucket
	PerIPBurst      int
	MaxConcurrent   int64
	MaxBodyBytes    int64
	RequestTimeout  time.Duration
}

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

func NewAPIEngine(l *zap.Logger, lim Limits, users *handler.UserHandler, health HealthFunc) *gin.Engine {
	r := server.NewRouter(l)

	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, "database unreachable"))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
	})
	r.GET("/metrics", mdw.MetricsHandler())

	chain := []gin.HandlerFunc{mdw.RateLimit(rate.Limit(lim.RatePerSec), lim.RateBurst)}
	if lim.PerIPRatePerSec > 0 {
		chain = append(chain, mdw.RateLimitPerIP(rate.Limit(lim.PerIPRatePerSec), lim.PerIPBurst))
	}
	chain = append(chain,
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout),
		mdw.Metrics(),
	)

	users.Mount(r.Group("", chain...))
	return r
}
