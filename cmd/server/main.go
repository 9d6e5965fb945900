package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"upscoverflow/internal/config"
	"upscoverflow/internal/db"
	"upscoverflow/internal/identity"
	"upscoverflow/internal/job"
	"upscoverflow/internal/metrics"
	"upscoverflow/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// Initialize Database
	if err := db.Init(cfg.Database, logger); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	m := metrics.New(logger)

	directory, closeRedis, err := buildDirectory(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize profile directory", zap.Error(err))
	}
	defer closeRedis()

	var verifier *identity.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier, err = identity.NewTokenVerifier(cfg.Auth.JWTSecret)
		if err != nil {
			logger.Fatal("Invalid JWT secret", zap.Error(err))
		}
	} else {
		logger.Warn("AUTH_JWT_SECRET not set, bearer tokens are rejected and only sessions are accepted")
	}

	r := router.Setup(router.Deps{
		Config:    cfg,
		DB:        db.DB,
		Logger:    logger,
		Directory: directory,
		Verifier:  verifier,
		Metrics:   m,
	})

	// Periodic removal of likes and saves whose target is gone
	scheduler, err := job.Schedule(cfg.Jobs.CleanupCron, job.NewHygieneJob(db.DB, m, logger))
	if err != nil {
		logger.Fatal("Failed to schedule hygiene job", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("UPSC Overflow server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// buildDirectory wires the profile lookup chain: in-process LRU, then Redis when
// configured, then the identity service (or the anonymous fallback).
func buildDirectory(cfg *config.Config, logger *zap.Logger) (identity.Directory, func(), error) {
	var next identity.Directory = identity.AnonymousDirectory{}
	if cfg.Identity.BaseURL != "" {
		next = identity.NewHTTPDirectory(cfg.Identity.BaseURL, cfg.Identity.APIKey, cfg.Identity.Timeout)
	} else {
		logger.Warn("IDENTITY_API_URL not set, every profile resolves to the anonymous placeholder")
	}

	closeFn := func() {}
	var shared identity.SharedCache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Identity.Timeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			// fall back to the in-process cache when Redis is down
			logger.Warn("Redis unavailable, using in-process profile cache only", zap.Error(err))
			_ = client.Close()
		} else {
			shared = identity.NewRedisCache(client)
			closeFn = func() { _ = client.Close() }
		}
	}

	directory, err := identity.NewCachedDirectory(next, cfg.Identity.ProfileCacheLen, cfg.Identity.ProfileCacheTTL, shared, logger)
	if err != nil {
		return nil, nil, err
	}
	return directory, closeFn, nil
}

func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
