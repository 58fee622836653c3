package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-gorm-users/internal/core/cache"
	"gin-gorm-users/internal/core/config"
	"gin-gorm-users/internal/core/database"
	"gin-gorm-users/internal/core/logger"
	"gin-gorm-users/internal/core/server"
	"gin-gorm-users/internal/domain"
	"gin-gorm-users/internal/repo"
	"gin-gorm-users/internal/service"
	"gin-gorm-users/internal/transport/http/handler"
	"gin-gorm-users/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if err := database.Migrate(db, cfg.DB.Driver, cfg.DB.Migrate, log, &domain.User{}); err != nil {
		log.Fatal("migrate failed", zap.String("mode", cfg.DB.Migrate), zap.Error(err))
	}

	c := cache.Dial(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if c != nil {
		defer c.Close()
		log.Info("user cache enabled", zap.String("addr", cfg.Redis.Addr))
	}
	users := repo.NewUserStore(db, c, time.Duration(cfg.Redis.TTLSec)*time.Second, log)

	svc := service.NewUserService(users, service.BcryptHasher{Cost: cfg.Security.BcryptCost}, log)
	r := router.NewAPIEngine(log, router.Limits{
		RatePerSec:      cfg.Limits.RatePerSec,
		RateBurst:       cfg.Limits.RateBurst,
		PerIPRatePerSec: cfg.Limits.PerIPRatePerSec,
		PerIPBurst:      cfg.Limits.PerIPBurst,
		MaxConcurrent:   cfg.Limits.MaxConcurrent,
		MaxBodyBytes:    cfg.Limits.MaxBodyBytes,
		RequestTimeout:  time.Duration(cfg.Limits.RequestTimeoutSec) * time.Second,
	}, handler.NewUserHandler(svc, log), pinger(db))

	addr := server.Addr(cfg.HTTP.Host, cfg.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.HTTP.Port)
	log.Info("user api starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL+"/user"),
		zap.String("health", baseURL+"/health"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("user api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	f := cfg.Log.File
	if !f.Enable {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Filename:   f.Filename,
		MaxSizeMB:  f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAgeDays: f.MaxAgeDays,
		Compress:   f.Compress,
	})
}

func pinger(db *gorm.DB) router.HealthFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
