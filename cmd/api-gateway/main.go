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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lifeflow-api/api/swagger"
	"github.com/noah-isme/lifeflow-api/internal/handler"
	internalmiddleware "github.com/noah-isme/lifeflow-api/internal/middleware"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/repository"
	"github.com/noah-isme/lifeflow-api/internal/service"
	"github.com/noah-isme/lifeflow-api/internal/validation"
	"github.com/noah-isme/lifeflow-api/pkg/cache"
	"github.com/noah-isme/lifeflow-api/pkg/config"
	"github.com/noah-isme/lifeflow-api/pkg/database"
	"github.com/noah-isme/lifeflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lifeflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lifeflow-api/pkg/middleware/requestid"
)

// @title LifeFlow API
// @version 1.0.0
// @description Blood donor and recipient matching service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validation.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	requestRepo := repository.NewBloodRequestRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	contentRepo := repository.NewContentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Redis.Namespace)
	defer cacheRepo.Close() //nolint:errcheck

	auditSvc := service.NewAuditService(auditRepo, service.AuditConfig{
		Workers: cfg.Audit.Workers,
		Retries: cfg.Audit.Retries,
	}, metricsSvc, logr)
	auditSvc.Start(context.Background())

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Search.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	searchSvc := service.NewDonorSearchService(profileRepo, cacheSvc, cfg.Search.CacheTTL, metricsSvc, logr)
	profileSvc := service.NewProfileService(profileRepo, searchSvc, validate, logr)
	requestSvc := service.NewBloodRequestService(requestRepo, auditSvc, metricsSvc, validate, logr)
	donationSvc := service.NewDonationService(donationRepo, requestRepo, auditSvc, cfg.Appointments.Window, validate, logr)
	contentSvc := service.NewContentService(contentRepo, auditSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(requestRepo, donationRepo, logr)
	exportSvc := service.NewExportService(requestSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	searchHandler := handler.NewDonorSearchHandler(searchSvc)
	requestHandler := handler.NewBloodRequestHandler(requestSvc, exportSvc)
	donationHandler := handler.NewDonationHandler(donationSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"redis":    cacheRepo.Ping,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := internalmiddleware.JWT(authSvc)
	adminOnly := internalmiddleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.GET("/me", authRequired, authHandler.Me)

		profiles := api.Group("/profiles", authRequired)
		profiles.POST("", profileHandler.Register)
		profiles.GET("/me", profileHandler.Me)
		profiles.PUT("/me", profileHandler.Update)
		profiles.GET("/me/blood-group-lock", profileHandler.Lock)

		api.GET("/donors/search", internalmiddleware.RateLimitByIP(cfg.Search.RateLimit, cfg.Search.RateBurst), searchHandler.Search)

		requests := api.Group("/requests")
		requests.GET("", requestHandler.ListPending)
		requests.POST("", authRequired, requestHandler.Create)
		requests.GET("/mine", authRequired, requestHandler.Mine)
		requests.GET("/:id", requestHandler.Get)

		donations := api.Group("/donations", authRequired)
		donations.POST("", donationHandler.Schedule)
		donations.GET("/upcoming", donationHandler.Upcoming)
		donations.PATCH("/:id/status", donationHandler.ChangeStatus)

		api.GET("/dashboard", authRequired, dashboardHandler.Get)

		posts := api.Group("/posts")
		posts.GET("/:kind", contentHandler.ListPublished)
		posts.GET("/:kind/:slug", contentHandler.GetPublished)

		admin := api.Group("/admin", authRequired, adminOnly)
		admin.GET("/requests", requestHandler.AdminList)
		admin.GET("/requests/transitions", requestHandler.Transitions)
		admin.GET("/requests/export", internalmiddleware.Audit(auditSvc, models.AuditActionRequestExport, "blood_requests"), requestHandler.Export)
		admin.PATCH("/requests/:id/status", requestHandler.ChangeStatus)
		admin.DELETE("/requests/:id", requestHandler.Delete)
		admin.GET("/profiles", profileHandler.AdminList)
		admin.GET("/posts/:kind", contentHandler.AdminList)
		admin.POST("/posts/:kind", contentHandler.Create)
		admin.PUT("/posts/:kind/:id", contentHandler.Update)
		admin.DELETE("/posts/:kind/:id", contentHandler.Delete)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	auditSvc.Stop()
}
