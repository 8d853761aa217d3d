package router

import (
	"net/http"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/handler"
	"sagetracker/backend/internal/metrics"
	"sagetracker/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Config holds everything the router needs. Handlers are built by the caller.
type Config struct {
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Gate        *auth.Gate
	CORSOrigins string

	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Friends       *handler.FriendHandler
	Requests      *handler.FriendRequestHandler
	Locations     *handler.LocationHandler
	Notifications *handler.NotificationHandler
	Presence      *handler.PresenceHandler
	Socket        gin.HandlerFunc
}

func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The socket authenticates itself so browsers can pass ?token=.
	r.GET("/socket", cfg.Socket)

	requireAuth := auth.AuthMiddleware(cfg.Gate)

	apiV1 := r.Group("/api/v1")
	{
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", cfg.Auth.Register)
			authRoutes.POST("/login", cfg.Auth.Login)
			authRoutes.POST("/mobile-login", cfg.Auth.MobileLogin)
			authRoutes.GET("/socket-token", requireAuth, cfg.Auth.SocketToken)
		}

		// Availability is checked during sign-up, before a token exists.
		apiV1.GET("/users/username-available", auth.OptionalAuthMiddleware(cfg.Gate), cfg.Users.UsernameAvailable)

		userRoutes := apiV1.Group("/users")
		userRoutes.Use(requireAuth)
		{
			userRoutes.GET("", cfg.Users.SearchUsers)
			userRoutes.GET("/me", cfg.Users.GetMe)
			userRoutes.GET("/me/logins", cfg.Users.GetLoginHistory)
			userRoutes.PUT("/me/username", cfg.Users.UpdateUsername)
		}

		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(requireAuth)
		{
			// Static request routes must be registered before /:friendId.
			friendRoutes.GET("/requests", cfg.Requests.ListRequests)
			friendRoutes.POST("/requests", cfg.Requests.SendRequest)
			friendRoutes.DELETE("/requests/:id", cfg.Requests.CancelRequest)
			friendRoutes.POST("/requests/:id/accept", cfg.Requests.AcceptRequest)
			friendRoutes.POST("/requests/:id/decline", cfg.Requests.DeclineRequest)

			friendRoutes.GET("", cfg.Friends.ListFriends)
			friendRoutes.GET("/:friendId", cfg.Friends.GetFriend)
			friendRoutes.DELETE("/:friendId", cfg.Friends.Unfriend)
			friendRoutes.PATCH("/:friendId/permissions", cfg.Friends.UpdatePermissions)
		}

		locationRoutes := apiV1.Group("")
		locationRoutes.Use(requireAuth)
		{
			locationRoutes.POST("/location", cfg.Locations.ReportLocation)
			locationRoutes.GET("/location", cfg.Locations.GetHistory)
			locationRoutes.GET("/locations/friends", cfg.Locations.GetFriendLocations)
			locationRoutes.GET("/presence/me", cfg.Presence.GetMyPresence)
		}

		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(requireAuth)
		{
			notificationRoutes.GET("", cfg.Notifications.ListNotifications)
			notificationRoutes.GET("/unread-count", cfg.Notifications.GetUnreadCount)
			notificationRoutes.POST("/read-all", cfg.Notifications.MarkAllAsRead)
			notificationRoutes.POST("/:id/read", cfg.Notifications.MarkAsRead)
		}
	}

	return r
}
