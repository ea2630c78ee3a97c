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

	"github.com/blogposts/blogposts-api/handlers"
	"github.com/blogposts/blogposts-api/internal/config"
	"github.com/blogposts/blogposts-api/internal/post/handler"
	"github.com/blogposts/blogposts-api/internal/post/service"
	"github.com/blogposts/blogposts-api/internal/storage"
	"github.com/blogposts/blogposts-api/pkg/logger"
	"github.com/blogposts/blogposts-api/pkg/metrics"
	"github.com/blogposts/blogposts-api/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	if err := run(); err != nil {
		logger.Fatalf("%v", err)
	}
}

// run wires and serves the API until a signal arrives.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Infof("config loaded: backend=%s mongo=%v postgres=%v redis=%v", cfg.StorageBackend(), cfg.MongoDB.URI != "", cfg.Postgres.DSN != "", cfg.Redis.Host != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStorage, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStorage()

	if cfg.Posts.Seed {
		seeded, err := storage.SeedIfEmpty(ctx, repo)
		if err != nil {
			return fmt.Errorf("failed to seed posts: %w", err)
		}
		if seeded {
			logger.Info("seeded sample posts")
		} else {
			logger.Info("posts already present, skipping seed")
		}
	}
	svc := service.New(repo, cfg.Posts.ListLimit)

	if cfg.Server.Environment == "production" || cfg.Server.Environment == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.CORS(), middleware.RequestLogger(), gin.Recovery(), middleware.RequestMetrics())

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter, per client IP
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter enabled (redis)")
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter enabled (memory)")
		}
	}

	var readyRedis *redis.Client
	if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
		readyRedis = redisClient
	}
	handlers.RegisterHealth(r, svc, readyRedis)
	handlers.RegisterSwagger(r, cfg.Posts.BasePath)
	handler.RegisterPostRoutes(r.Group(cfg.Posts.BasePath), svc)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting blog posts service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
		serveErr = fmt.Errorf("server failed: %w", serveErr)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("graceful shutdown failed: %v", err)
	}
	return serveErr
}
