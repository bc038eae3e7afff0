package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Anandhg36/RMIT-Hackathon/api/swagger"
	"github.com/Anandhg36/RMIT-Hackathon/internal/handler"
	"github.com/Anandhg36/RMIT-Hackathon/internal/middleware"
	"github.com/Anandhg36/RMIT-Hackathon/internal/repository"
	"github.com/Anandhg36/RMIT-Hackathon/internal/service"
	"github.com/Anandhg36/RMIT-Hackathon/internal/source"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/cache"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/config"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/crypto"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/database"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/logger"
	corsmiddleware "github.com/Anandhg36/RMIT-Hackathon/pkg/middleware/cors"
	reqidmiddleware "github.com/Anandhg36/RMIT-Hackathon/pkg/middleware/requestid"
)

// @title Campus One API
// @version 1.0.0
// @description Schedule reconciliation service for the student dashboard
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	box, err := crypto.NewBox(cfg.Secrets.EncryptionKey)
	if err != nil {
		logr.Sugar().Fatalw("invalid secrets encryption key", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Schedule.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	secretRepo := repository.NewSecretRepository(db)
	selectionRepo := repository.NewSelectionRepository(redisClient, cfg.Schedule.SelectionTTL)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	secretSvc := service.NewSecretService(secretRepo, box, logr)

	upstream := source.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.RequestTimeout, secretSvc, logr)
	rosterSrc := source.NewRosterSource(upstream)
	matchSrc := source.NewMatchSource(upstream)

	reconcileSvc := service.NewReconcileService(logr)
	scheduleSvc := service.NewScheduleService(service.ScheduleServiceParams{
		Roster:     rosterSrc,
		Classmates: matchSrc,
		Reconciler: reconcileSvc,
		Cache:      cacheSvc,
		Selections: selectionRepo,
		Metrics:    metricsSvc,
		Logger:     logr,
		Config: service.ScheduleServiceConfig{
			FetchTimeout: cfg.Schedule.FetchTimeout,
			CacheTTL:     cfg.Schedule.CacheTTL,
		},
	})
	selectionSvc := service.NewSelectionService(selectionRepo, scheduleSvc, logr)
	exportSvc := service.NewExportService(nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, selectionSvc, exportSvc)
	secretHandler := handler.NewSecretHandler(secretSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		schedule := api.Group("/schedule", middleware.JWT(authSvc))
		{
			schedule.GET("", scheduleHandler.Get)
			schedule.GET("/export", scheduleHandler.Export)
			schedule.GET("/selection", scheduleHandler.GetSelection)
			schedule.PUT("/selection/course", scheduleHandler.SelectCourse)
			schedule.PUT("/selection/tab", scheduleHandler.SwitchTab)
			schedule.POST("/selection/reset", scheduleHandler.ResetSelection)
		}

		secrets := api.Group("/secrets", middleware.JWT(authSvc))
		{
			secrets.GET("/upstream", secretHandler.Status)
			secrets.PUT("/upstream", secretHandler.Store)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
