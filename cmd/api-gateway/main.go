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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classgrid/classgrid-api/api/swagger"
	"github.com/classgrid/classgrid-api/internal/handler"
	internalmiddleware "github.com/classgrid/classgrid-api/internal/middleware"
	"github.com/classgrid/classgrid-api/internal/repository"
	"github.com/classgrid/classgrid-api/internal/service"
	"github.com/classgrid/classgrid-api/pkg/cache"
	"github.com/classgrid/classgrid-api/pkg/config"
	"github.com/classgrid/classgrid-api/pkg/database"
	"github.com/classgrid/classgrid-api/pkg/jobs"
	"github.com/classgrid/classgrid-api/pkg/logger"
	corsmiddleware "github.com/classgrid/classgrid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classgrid/classgrid-api/pkg/middleware/requestid"
)

// @title ClassGrid API
// @version 1.0.0
// @description School administration API with automatic timetable generation
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	classRepo := repository.NewClassRepository(db)
	classSubjectRepo := repository.NewClassSubjectRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	userRepo := repository.NewUserRepository(db)
	resultStore := repository.NewResultStore(redisClient, cfg.Scheduler.ResultTTL)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	timetableSvc := service.NewTimetableService(
		db, classRepo, classSubjectRepo, assignmentRepo, availabilityRepo,
		timeSlotRepo, timetableRepo, resultStore, metricsSvc, validate, logr,
		service.TimetableConfig{
			AcademicYear:    cfg.Scheduler.AcademicYear,
			DefaultStrategy: cfg.Scheduler.DefaultStrategy,
		},
	)
	availabilitySvc := service.NewAvailabilityService(timeSlotRepo, availabilityRepo, logr)

	queue := jobs.NewQueue("timetable-generation", timetableSvc.HandleGenerationJob, jobs.QueueConfig{
		Workers:    cfg.Scheduler.BulkWorkers,
		BufferSize: cfg.Scheduler.BulkQueueSize,
		Logger:     logr,
	})
	timetableSvc.SetQueue(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(internalmiddleware.JWT(authSvc))
	protected.GET("/time-slots", availabilityHandler.TimeSlots)
	protected.GET("/availability/:teacherId", availabilityHandler.TeacherAvailability)
	protected.GET("/classes/:classId/timetable", timetableHandler.Get)
	protected.GET("/classes/:classId/timetable/export", timetableHandler.Export)

	admin := protected.Group("")
	admin.Use(internalmiddleware.RequireRole("admin"))
	admin.POST("/classes/:classId/timetable/generate", timetableHandler.Generate)
	admin.POST("/classes/:classId/timetable/resolve", timetableHandler.Resolve)
	admin.POST("/classes/:classId/timetable/activate", timetableHandler.Activate)
	admin.POST("/timetables/generate", timetableHandler.GenerateAll)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
