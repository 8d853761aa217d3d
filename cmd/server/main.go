package main

//go:generate swag init -g cmd/server/main.go -o docs --dir ../../

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sagetracker/backend/internal/app"
	"sagetracker/backend/internal/cache"
	"sagetracker/backend/internal/config"
	"sagetracker/backend/internal/database"
	"sagetracker/backend/internal/logger"
	"sagetracker/backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	// Swagger imports
	_ "sagetracker/backend/docs" // This is important for swag to find the generated docs
)

const shutdownTimeout = 15 * time.Second

// @title           SageTracker API
// @version         1.0
// @description     Friends, location sharing and live events for the SageTracker app.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.DatabaseURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	ctx := context.Background()
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if redisClient == nil {
		zapLogger.Info("REDIS_URL not set, unread cache disabled")
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	application, err := app.New(cfg, app.Deps{
		DB:      db,
		Redis:   redisClient,
		Metrics: metrics.New(zapLogger),
		Logger:  zapLogger,
	})
	if err != nil {
		zapLogger.Fatal("Failed to build application", zap.Error(err))
	}
	application.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server is running",
			zap.String("addr", srv.Addr),
			zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/index.html"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked sockets are not tracked by http.Server, so the gateway
	// closes them after the listener stops.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := application.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Application shutdown failed", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
