package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mdw "gin-gorm-users/internal/transport/http/middleware"
)

// NewRouter returns a bare engine with request id, access log, panic recovery
// and CORS. The access log sits outside recovery so panics are logged as 500s.
func NewRouter(l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
	)
	return r
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
