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

	_ "github.com/noah-isme/academy-booking-api/api/swagger"
	"github.com/noah-isme/academy-booking-api/internal/handler"
	"github.com/noah-isme/academy-booking-api/internal/middleware"
	"github.com/noah-isme/academy-booking-api/internal/repository"
	"github.com/noah-isme/academy-booking-api/internal/service"
	"github.com/noah-isme/academy-booking-api/pkg/cache"
	"github.com/noah-isme/academy-booking-api/pkg/config"
	"github.com/noah-isme/academy-booking-api/pkg/database"
	"github.com/noah-isme/academy-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-booking-api/pkg/middleware/requestid"
)

// @title Academy Booking API
// @version 0.1.0
// @description Seat booking, capacity and credit tracking for academy seasons
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, capacity cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	metricsSvc := service.NewMetricsService()

	seasonRepo := repository.NewSeasonRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	bookingStore := repository.NewBookingStore(db, cfg.Booking.TxRetries, metricsSvc, logr)

	auditSvc := service.NewAuditService(auditRepo, cfg.Audit, logr)
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	capacitySvc := service.NewCapacityService(slotRepo, cacheRepo, cfg.Capacity.CacheEnabled && redisClient != nil, cfg.Capacity.CacheTTL, metricsSvc, logr)
	bookingSvc := service.NewBookingService(bookingStore, auditSvc, capacitySvc, logr)
	slotSvc := service.NewSlotService(seasonRepo, slotRepo, studentRepo, logr)
	creditSvc := service.NewCreditService(studentRepo, logr)
	syncSvc := service.NewScheduleSyncService(seasonRepo, slotRepo, studentRepo, bookingSvc, validate, logr)

	slotHandler := handler.NewSlotHandler(slotSvc)
	capacityHandler := handler.NewCapacityHandler(capacitySvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, metricsSvc)
	scheduleHandler := handler.NewScheduleHandler(syncSvc)
	creditHandler := handler.NewCreditHandler(creditSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/seasons/:seasonId/slots", slotHandler.ListByMonth)
		api.POST("/seasons/:seasonId/slots/generate", slotHandler.Generate)
		api.POST("/seasons/:seasonId/slots/resync", slotHandler.Resync)
		api.GET("/seasons/:seasonId/capacity", capacityHandler.Get)

		api.POST("/slots/:slotId/enrollments", bookingHandler.Enroll)
		api.DELETE("/slots/:slotId/enrollments/:studentId", bookingHandler.Unenroll)
		api.PUT("/slots/:slotId/enrollments/:studentId/attendance", bookingHandler.MarkAttendance)

		api.POST("/students/:studentId/schedule-sync", scheduleHandler.Sync)
		api.GET("/students/:studentId/credits", creditHandler.Get)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
