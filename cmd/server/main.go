package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"teamchat-service/internal/config"
	"teamchat-service/internal/database"
	"teamchat-service/internal/job"
	"teamchat-service/internal/metrics"
	"teamchat-service/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Set Gin mode
	if cfg.Server.Env == "production" || cfg.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Teamchat Service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("user_service_url", cfg.Services.UserServiceURL),
		zap.String("auth_service_url", cfg.Auth.ServiceURL),
	)
	if cfg.Auth.SecretKey == "" {
		logger.Warn("SECRET_KEY is not set, every token will be rejected")
	}

	// Initialize database
	db, err := database.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	logger.Info("Database connected and migrated")

	// Redis is optional; without it last-seen presence is unavailable
	var redisClient *redis.Client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err = database.NewRedis(ctx, cfg.Redis)
	cancel()
	if err != nil {
		logger.Warn("Redis unavailable, last-seen presence disabled", zap.Error(err))
	} else {
		logger.Info("Redis connected")
	}

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegistry(reg, logger)

	server, err := router.Setup(cfg, router.Dependencies{
		DB:       db,
		Redis:    redisClient,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("Failed to set up router", zap.Error(err))
	}

	// Background jobs
	scheduler, err := job.NewScheduler(cfg.Jobs.PresenceSnapshotSpec,
		job.NewPresenceSnapshotJob(server.Controller, m, logger), logger)
	if err != nil {
		logger.Fatal("Failed to schedule presence snapshot job", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Teamchat Service started successfully", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
