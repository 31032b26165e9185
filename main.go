package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"essay-feed/cache"
	"essay-feed/config"
	"essay-feed/logger"
	"essay-feed/router"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.ParseLevel(cfg.LogLevel), os.Stderr)
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db := config.InitDB(cfg)

	// Session cache
	var sessions cache.SessionCache = cache.NoopSessionCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisSessionCache(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionCacheTTL)
		if err != nil {
			logger.Warningf("redis unavailable, session cache disabled: %v", err)
		} else {
			defer redisCache.Close()
			sessions = redisCache
			logger.Infof("session cache using redis at %s", cfg.RedisAddr)
		}
	}

	opts := router.Options{
		JWTSecret:     cfg.JWTSecret,
		JWTExpiration: cfg.JWTExpiration,
		SessionSecret: cfg.SessionSecret,
		BcryptCost:    cfg.BcryptCost,
		SecureCookies: cfg.IsProduction(),
	}
	engine := router.Setup(router.NewServices(db, sessions, opts), opts)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown failed: %v", err)
	}
}
