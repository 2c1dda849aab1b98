package router

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamchat-service/internal/client"
	"teamchat-service/internal/config"
	"teamchat-service/internal/handler"
	"teamchat-service/internal/metrics"
	"teamchat-service/internal/middleware"
	"teamchat-service/internal/presence"
	"teamchat-service/internal/repository"
	"teamchat-service/internal/service"
	"teamchat-service/internal/websocket"
)

// Dependencies are the process-level resources the routes are built from.
// Redis is optional.
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the wired HTTP engine plus the realtime controller that the
// background jobs sample.
type Server struct {
	Engine     *gin.Engine
	Controller *websocket.Controller
}

func Setup(cfg *config.Config, deps Dependencies) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(strings.Join(cfg.WebSocket.AllowedOrigins, ",")))
	r.Use(middleware.Metrics(deps.Metrics))

	// Initialize collaborators
	validator := middleware.NewJWTValidator(cfg.Auth.ServiceURL, cfg.Auth.SecretKey, logger)
	userClient := client.NewUserClient(cfg.Services.UserServiceURL, cfg.Services.Timeout)
	lastSeenStore := presence.NewLastSeenStore(deps.Redis, cfg.Redis.LastSeenTTL)

	// A nil interface, not a typed nil, disables uploads.
	var s3Client client.S3ClientInterface
	if cfg.S3.Enabled() {
		c, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		s3Client = c
	} else {
		logger.Warn("S3 is not configured, uploads are disabled")
	}

	// Realtime core
	hub := websocket.NewHub(logger, deps.Metrics)
	var lastSeen websocket.LastSeenRecorder
	if deps.Redis != nil {
		lastSeen = lastSeenStore
	}
	controller := websocket.NewController(hub, validator, userClient, lastSeen, deps.Metrics, logger)
	controller.SetAuthTimeout(cfg.WebSocket.AuthTimeout)
	bridge := websocket.NewBridge(hub, logger)
	wsHandler := websocket.NewHandler(controller, websocket.Options{
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		SendBuffer:     cfg.WebSocket.SendBuffer,
	}, strings.Join(cfg.WebSocket.AllowedOrigins, ","), logger)

	// Initialize repositories
	channelRepo := repository.NewChannelRepository(deps.DB)
	messageRepo := repository.NewMessageRepository(deps.DB)

	// Initialize services
	channelService := service.NewChannelService(channelRepo)
	messageService := service.NewMessageService(messageRepo, channelRepo, bridge, userClient, deps.Metrics, logger)
	controller.SetAccessChecker(messageService)
	presenceService := service.NewPresenceService(controller, lastSeenStore, logger)
	uploadService := service.NewUploadService(s3Client, messageService, logger)

	// Initialize handlers
	channelHandler := handler.NewChannelHandler(channelService)
	messageHandler := handler.NewMessageHandler(messageService)
	presenceHandler := handler.NewPresenceHandler(presenceService)
	uploadHandler := handler.NewUploadHandler(uploadService)
	healthHandler := handler.NewHealthHandler(deps.DB, deps.Redis)

	// Health endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group(cfg.Server.BasePath)
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)

		// The socket authenticates in-band
		api.GET("/ws", wsHandler.ServeWS)

		authenticated := api.Group("")
		authenticated.Use(middleware.AuthMiddleware(validator))
		{
			// Channel routes
			authenticated.POST("/channels", channelHandler.CreateChannel)
			authenticated.GET("/channels/:channelId", channelHandler.GetChannel)
			authenticated.POST("/channels/:channelId/members", channelHandler.AddMembers)
			authenticated.GET("/workspaces/:workspaceId/channels", channelHandler.ListWorkspaceChannels)

			// Conversation routes
			authenticated.GET("/channels/:channelId/messages", messageHandler.GetChannelMessages)
			authenticated.POST("/channels/:channelId/messages", messageHandler.SendChannelMessage)
			authenticated.GET("/channels/:channelId/pins", messageHandler.GetChannelPins)
			authenticated.GET("/dm/:userId/messages", messageHandler.GetDirectMessages)
			authenticated.POST("/dm/:userId/messages", messageHandler.SendDirectMessage)
			authenticated.GET("/dm/:userId/pins", messageHandler.GetDirectPins)

			// Message routes
			authenticated.PATCH("/messages/:messageId", messageHandler.EditMessage)
			authenticated.DELETE("/messages/:messageId", messageHandler.DeleteMessage)
			authenticated.POST("/messages/:messageId/pin", messageHandler.PinMessage)
			authenticated.DELETE("/messages/:messageId/pin", messageHandler.UnpinMessage)
			authenticated.POST("/messages/:messageId/reactions", messageHandler.AddReaction)
			authenticated.DELETE("/messages/:messageId/reactions/:emoji", messageHandler.RemoveReaction)
			authenticated.GET("/messages/:messageId/replies", messageHandler.GetReplies)
			authenticated.POST("/messages/:messageId/replies", messageHandler.CreateReply)

			// Uploads
			authenticated.POST("/uploads", uploadHandler.Upload)
			authenticated.DELETE("/uploads", uploadHandler.DeleteUpload)

			// Presence routes
			authenticated.GET("/presence/workspaces/:workspaceId", presenceHandler.GetWorkspacePresence)
			authenticated.GET("/presence/users/:userId", presenceHandler.GetUserPresence)
		}
	}

	return &Server{Engine: r, Controller: controller}, nil
}
