// Package app assembles the server's components and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/cache"
	"sagetracker/backend/internal/config"
	"sagetracker/backend/internal/handler"
	"sagetracker/backend/internal/hub"
	"sagetracker/backend/internal/job"
	"sagetracker/backend/internal/metrics"
	"sagetracker/backend/internal/realtime"
	"sagetracker/backend/internal/repository"
	"sagetracker/backend/internal/router"
	"sagetracker/backend/internal/service"
	"sagetracker/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const unreadCacheTTL = 5 * time.Minute

// App is the fully wired server minus the listener.
type App struct {
	Router   *gin.Engine
	Registry *hub.Registry
	Gateway  *realtime.Gateway
	Queue    *hub.Queue

	reconcile *job.ReconcileJob
	logger    *zap.Logger
}

// Deps are the externally owned resources App builds on. Redis may be nil,
// which disables the unread cache. A nil Metrics gets a private registry.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func New(cfg *config.Config, deps Deps) (*App, error) {
	logger := deps.Logger
	if deps.Metrics == nil {
		reg := prometheus.NewRegistry()
		deps.Metrics = metrics.NewWithRegistry(reg, logger)
		deps.Gatherer = reg
	}

	issuer := jwt.NewIssuer(cfg.JWTSecret)
	gate := auth.NewGate(issuer)

	registry := hub.NewRegistry()
	registry.SetObserver(deps.Metrics)
	gateway := realtime.NewGateway(gate, registry, logger)
	dispatcher := hub.NewDispatcher(registry, gateway, deps.Metrics, logger)
	queue := hub.NewQueue(dispatcher, cfg.DispatchWorkers, cfg.DispatchQueueSize, deps.Metrics, logger)

	users := repository.NewUserRepository(deps.DB)
	friendshipRepo := repository.NewFriendshipRepository(deps.DB)
	requestRepo := repository.NewFriendRequestRepository(deps.DB)
	locationRepo := repository.NewLocationRepository(deps.DB)
	notificationRepo := repository.NewNotificationRepository(deps.DB)
	loginLogRepo := repository.NewLoginLogRepository(deps.DB)

	unread := cache.NewUnreadCache(deps.Redis, unreadCacheTTL, logger)

	friendships := service.NewFriendshipService(friendshipRepo, users, queue, logger)
	notifications := service.NewNotificationService(notificationRepo, unread, queue, logger)
	userService := service.NewUserService(users, loginLogRepo, friendships, queue, logger)
	requests := service.NewFriendRequestService(requestRepo, users, friendships, notifications, queue, logger)
	locations := service.NewLocationService(locationRepo, users, friendships, queue, deps.Metrics, logger)

	reconcile, err := job.NewReconcileJob(cfg.ReconcileSchedule, friendships, deps.Metrics, logger)
	if err != nil {
		queue.Close()
		return nil, fmt.Errorf("reconcile job: %w", err)
	}

	ttls := handler.TokenTTLs{
		Session: cfg.SessionTokenTTL,
		Mobile:  cfg.MobileTokenTTL,
		Socket:  cfg.SocketTokenTTL,
	}

	engine := router.Setup(router.Config{
		Logger:      logger,
		Metrics:     deps.Metrics,
		Gatherer:    deps.Gatherer,
		Gate:        gate,
		CORSOrigins: cfg.CORSOrigins,

		Auth:          handler.NewAuthHandler(userService, issuer, ttls, logger),
		Users:         handler.NewUserHandler(userService, logger),
		Friends:       handler.NewFriendHandler(friendships, logger),
		Requests:      handler.NewFriendRequestHandler(requests, logger),
		Locations:     handler.NewLocationHandler(locations, logger),
		Notifications: handler.NewNotificationHandler(notifications, logger),
		Presence:      handler.NewPresenceHandler(registry),
		Socket:        gateway.ServeWS,
	})

	return &App{
		Router:    engine,
		Registry:  registry,
		Gateway:   gateway,
		Queue:     queue,
		reconcile: reconcile,
		logger:    logger,
	}, nil
}

// Start launches background work.
func (a *App) Start() {
	a.reconcile.Start()
}

// Shutdown closes live sockets, drains queued events and stops the
// reconcile job. The HTTP listener must already be shut down.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Gateway.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("gateway: %w", err))
	}
	a.Queue.Close()
	a.reconcile.Stop(ctx)
	a.logger.Info("background components stopped")
	return errors.Join(errs...)
}
