// Package main runs the course platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumenlearn/backend/config"
	"github.com/lumenlearn/backend/internal/auth"
	"github.com/lumenlearn/backend/internal/courses"
	"github.com/lumenlearn/backend/internal/enricher"
	"github.com/lumenlearn/backend/internal/lessons"
	"github.com/lumenlearn/backend/internal/media"
	"github.com/lumenlearn/backend/internal/middleware"
	"github.com/lumenlearn/backend/internal/progress"
	"github.com/lumenlearn/backend/pkg/database"
	"github.com/lumenlearn/backend/pkg/queue"
	"github.com/lumenlearn/backend/pkg/redis"
	"github.com/lumenlearn/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Catalog
	courseRepo := courses.NewRepository(pool)
	lessonRepo := lessons.NewRepository(pool)

	// Progress
	ledger := progress.NewRepository(pool)
	aggregator := progress.NewAggregator(courseRepo, ledger)
	progressHandler := progress.NewHandler(lessonRepo, ledger, aggregator, logger)

	// Enrichment: only wired when the media host is configured. Lesson
	// writes still succeed without it; durations stay at the sentinel.
	var enqueuer lessons.Enqueuer
	mediaEnabled := cfg.Media.CloudName != ""
	if mediaEnabled {
		enqueuer = jobQueue
	}
	lessonHandler := lessons.NewHandler(lessonRepo, ledger, enqueuer, logger)
	courseHandler := courses.NewHandler(courseRepo, lessonRepo, ledger, aggregator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Course list is public (home and catalog pages).
	router.GET("/courses", courseHandler.List)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin only)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Courses
		api.GET("/courses/:id", courseHandler.GetByID)
		api.GET("/courses/:id/progress", progressHandler.CourseProgress)
		api.POST("/courses", middleware.RequireRole("admin"), courseHandler.Create)
		api.PATCH("/courses/:id", middleware.RequireRole("admin"), courseHandler.Update)
		api.DELETE("/courses/:id", middleware.RequireRole("admin"), courseHandler.Delete)

		// Lessons
		api.GET("/lessons/:id", lessonHandler.GetByID)
		api.POST("/lessons/:id/toggle", progressHandler.Toggle)
		api.POST("/courses/:id/lessons", middleware.RequireRole("admin"), lessonHandler.Create)
		api.PATCH("/lessons/:id", middleware.RequireRole("admin"), lessonHandler.Update)
		api.DELETE("/lessons/:id", middleware.RequireRole("admin"), lessonHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process enrichment worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if mediaEnabled {
		mediaClient := media.NewClient(cfg.Media, logger)
		processor := enricher.NewDurationProcessor(lessonRepo, mediaClient, jobQueue, logger)
		go processor.Run(workerCtx)
		logger.Info("enrichment worker started")
	} else {
		logger.Warn("media host not configured; duration enrichment disabled")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
