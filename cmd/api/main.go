package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mfauzi77/paudhi-backend/api/swagger"
	"github.com/mfauzi77/paudhi-backend/internal/repository"
	"github.com/mfauzi77/paudhi-backend/internal/router"
	"github.com/mfauzi77/paudhi-backend/internal/service"
	"github.com/mfauzi77/paudhi-backend/pkg/cache"
	"github.com/mfauzi77/paudhi-backend/pkg/config"
	"github.com/mfauzi77/paudhi-backend/pkg/database"
	"github.com/mfauzi77/paudhi-backend/pkg/logger"
)

// @title PAUD HI Backend API
// @version 1.0.0
// @description Content and indicator reporting backend for the national early childhood development program
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API keeps working without Redis, just uncached.
		logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	faqRepo := repository.NewFAQRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	reportSvc := service.NewReportService(reportRepo, cacheRepo, metricsSvc, logr)
	exportSvc := service.NewExportService(reportRepo, logr)
	newsSvc := service.NewNewsService(newsRepo, logr, cfg.Uploads.NewsPath)
	resourceSvc := service.NewResourceService(resourceRepo, logr)
	faqSvc := service.NewFAQService(faqRepo, logr)
	dashboardSvc := service.NewDashboardService(
		reportRepo, newsRepo, userRepo, cacheRepo, metricsSvc, logr,
		cfg.Dashboard.CacheTTL,
		repository.CacheKeyPublicDashboard,
		repository.CacheKeyAdminDashboard,
	)

	engine := router.New(router.Deps{
		Config:    cfg,
		Logger:    logr,
		Metrics:   metricsSvc,
		DB:        db,
		Users:     userRepo,
		Auth:      authSvc,
		User:      userSvc,
		Report:    reportSvc,
		Export:    exportSvc,
		News:      newsSvc,
		Resource:  resourceSvc,
		FAQ:       faqSvc,
		Dashboard: dashboardSvc,
	})

	if cfg.Env != config.EnvProduction {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
