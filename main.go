package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"afribase-messaging/internal/config"
	"afribase-messaging/internal/db"
	"afribase-messaging/internal/handlers"
	"afribase-messaging/internal/logger"
	"afribase-messaging/internal/middleware"
	"afribase-messaging/internal/observability"
	"afribase-messaging/internal/presence"
	"afribase-messaging/internal/rabbitmq"
	"afribase-messaging/internal/repositories"
	"afribase-messaging/internal/service"
	"afribase-messaging/internal/storage"
	"afribase-messaging/internal/telemetry"
	"afribase-messaging/internal/ws"
)

const serviceName = "afribase-messaging"

func main() {
	logger.Init("")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Environment)

	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, serviceName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init tracing")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("tracer shutdown failed")
			}
		}()
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	var tracker presence.Tracker
	if cfg.RedisAddr != "" {
		redisTracker, err := presence.NewRedisTracker(cfg.RedisAddr, cfg.RedisPassword, cfg.PresenceTTL())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		tracker = redisTracker
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, typing presence is in-process only")
		tracker = presence.NewMemoryTracker(cfg.PresenceTTL())
	}
	defer tracker.Close()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRoutingKey, serviceName, cfg.Environment)

	if cfg.AMQPURL != "" {
		eventSink, err := observability.NewAMQPSink(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			logger.Warn().Err(err).Msg("event publishing disabled")
		} else {
			observability.SetSink(eventSink)
			defer eventSink.Close()
		}
	}

	messageRepo := repositories.NewMessageRepo(database)
	inboxRepo := repositories.NewInboxRepo(database)

	hub := ws.NewHub()
	svc := service.New(messageRepo, inboxRepo, tracker, hub)

	var uploader storage.Uploader
	if cfg.StorageBucket != "" {
		s3Uploader, err := storage.NewS3Uploader(ctx, storage.Config{
			Endpoint:  cfg.StorageEndpoint,
			Region:    cfg.StorageRegion,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			PublicURL: cfg.StoragePublicURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object storage")
		}
		uploader = s3Uploader
	} else {
		logger.Warn().Msg("STORAGE_BUCKET not set, image uploads disabled")
	}

	validator := middleware.NewTokenValidator(cfg.JWTSecret)

	messageHandler := handlers.NewMessageHandler(svc, audit)
	uploadHandler := handlers.NewUploadHandler(uploader)
	conversationWS := ws.NewConversationWebSocketHandler(hub, validator)
	inboxWS := ws.NewInboxWebSocketHandler(hub, validator)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(validator)

	router.POST("/messages", authMiddleware, messageHandler.SendMessage)
	router.GET("/conversations/:conversation_key/messages", authMiddleware, messageHandler.GetConversationMessages)
	router.POST("/conversations/:conversation_key/read", authMiddleware, messageHandler.MarkRead)
	router.POST("/conversations/:conversation_key/messages/:message_id/seen", authMiddleware, messageHandler.MarkMessageSeen)
	router.DELETE("/conversations/:conversation_key/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.POST("/conversations/:conversation_key/typing", authMiddleware, messageHandler.SetTyping)
	router.GET("/conversations/:conversation_key/typing", authMiddleware, messageHandler.GetTyping)
	router.GET("/inbox", authMiddleware, messageHandler.Inbox)
	router.POST("/uploads", authMiddleware, uploadHandler.UploadImage)

	router.GET("/ws/conversations/:conversation_key", conversationWS.Handle)
	router.GET("/ws/inbox", inboxWS.Handle)

	if cfg.DebugRoutes {
		handlers.RegisterDebugRoutes(router.Group("/"), audit)
	}

	logger.Info().Str("port", cfg.Port).Msg("messaging service listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
