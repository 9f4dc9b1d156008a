package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/locker"
	"hospital-app-server/internal/logger"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/repository"
	"hospital-app-server/internal/routes"
	"hospital-app-server/internal/scheduling"
)

func main() {
	// A missing .env is fine when the environment is set by the deployment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}

	created, err := models.SeedAdmin(db, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		zlog.Fatal("seed admin", zap.Error(err))
	}
	if created {
		zlog.Info("default admin created", zap.String("email", cfg.Admin.Email))
	}

	opts := []scheduling.Option{}
	if cfg.Booking.OverlapCheck {
		opts = append(opts, scheduling.WithOverlapCheck())
	}
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := locker.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			zlog.Fatal("connect redis", zap.Error(err))
		}
		defer client.Close()
		ttl := time.Duration(cfg.Booking.LockTTLSeconds) * time.Second
		wait := time.Duration(cfg.Booking.LockWaitMillis) * time.Millisecond
		opts = append(opts,
			scheduling.WithSlotLocker(locker.NewRedisLocker(client, zlog.Named("locker")), ttl),
			scheduling.WithLockWait(wait, 50*time.Millisecond),
		)
		zlog.Info("booking locks enabled", zap.String("redis", cfg.Redis.Addr))
	}
	service := scheduling.NewService(repository.NewSchedulingRepository(db), zlog.Named("scheduling"), opts...)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zlog.Named("http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	stop := make(chan struct{})
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	limiter.StartSweeper(stop)
	router.Use(middleware.RateLimitMiddleware(limiter))

	routes.SetupRoutes(router, db, cfg, service, zlog)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	close(stop)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
