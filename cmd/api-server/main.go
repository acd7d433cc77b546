package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushub/activity-points-api/api/swagger"
	"github.com/campushub/activity-points-api/internal/handler"
	"github.com/campushub/activity-points-api/internal/middleware"
	"github.com/campushub/activity-points-api/internal/models"
	"github.com/campushub/activity-points-api/internal/repository"
	"github.com/campushub/activity-points-api/internal/service"
	"github.com/campushub/activity-points-api/pkg/cache"
	"github.com/campushub/activity-points-api/pkg/config"
	"github.com/campushub/activity-points-api/pkg/database"
	"github.com/campushub/activity-points-api/pkg/jobs"
	"github.com/campushub/activity-points-api/pkg/logger"
	corsmiddleware "github.com/campushub/activity-points-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/activity-points-api/pkg/middleware/requestid"
	"github.com/campushub/activity-points-api/pkg/storage"
)

// @title Activity Points API
// @version 1.0.0
// @description Student extracurricular activity points tracking service
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, roster caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Roster.CacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Roster.CacheTTL, logr, true)
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	rosterSvc := service.NewRosterService(studentRepo, cacheSvc, cfg.Roster.CacheTTL, logr)
	authSvc := service.NewAuthService(studentRepo, adminRepo, rosterSvc, validate, logr, service.AuthConfig{
		TokenSecret:      cfg.JWT.Secret,
		TokenExpiry:      cfg.JWT.Expiration,
		Issuer:           cfg.JWT.Issuer,
		BootstrapAdminID: cfg.BootstrapAdmin.AdminID,
		BootstrapPasskey: cfg.BootstrapAdmin.Passkey,
	})
	submissionSvc := service.NewSubmissionService(submissionRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(submissionRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	adminHandler := handler.NewAdminHandler(submissionSvc, rosterSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reportHandler *handler.ReportHandler
	if cfg.Reports.Enabled {
		reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportRepo := repository.NewReportRepository(db)
		exportSvc := service.NewExportService(submissionRepo, reportStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		reportSvc := service.NewReportService(reportRepo, queue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
		reportHandler = handler.NewReportHandler(reportSvc, logr)
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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/admin/signup",
			middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin),
			authHandler.CreateAdmin)
	}

	events := r.Group("/events", middleware.JWT(authSvc))
	{
		events.POST("", middleware.RequireRoles(models.RoleStudent, models.RoleAdmin), submissionHandler.Create)
		events.GET("/certificate/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), submissionHandler.Certificate)
		events.GET("/:usn", middleware.RBAC(string(models.RoleAdmin), middleware.SelfSentinel), submissionHandler.ListByStudent)
	}

	r.GET("/dashboard/:usn",
		middleware.JWT(authSvc),
		middleware.RBAC(string(models.RoleAdmin), middleware.SelfSentinel),
		dashboardHandler.Dashboard)

	admin := r.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", adminHandler.Users)
		admin.GET("/events", adminHandler.Events)
		admin.GET("/events/pending", adminHandler.PendingEvents)
		admin.GET("/events/user/:usn", adminHandler.StudentEvents)
		admin.PATCH("/events/:id/status", adminHandler.UpdateStatus)
		if reportHandler != nil {
			admin.POST("/reports", reportHandler.GenerateReport)
			admin.GET("/reports/:id", reportHandler.ReportStatus)
		}
	}

	if reportHandler != nil {
		r.GET("/reports/download/:token", reportHandler.DownloadReport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
