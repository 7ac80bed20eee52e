package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"careerbridge-service/internal/assistant"
	"careerbridge-service/internal/config"
	"careerbridge-service/internal/db"
	"careerbridge-service/internal/handlers"
	"careerbridge-service/internal/middleware"
	"careerbridge-service/internal/observability"
	"careerbridge-service/internal/rabbitmq"
	"careerbridge-service/internal/repositories"
	"careerbridge-service/internal/telemetry"
	"careerbridge-service/internal/ws"
)

const serviceName = "careerbridge-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("event publisher disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRoutingKey, serviceName, cfg.Environment)

	participantRepo := repositories.NewParticipantRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	requestRepo := repositories.NewInterviewRequestRepo(database)

	hub := ws.NewHub()

	conversationHandler := handlers.NewConversationHandler(conversationRepo, messageRepo, participantRepo, hub)
	requestHandler := handlers.NewRequestHandler(requestRepo, participantRepo, hub, auditEmitter)
	assistantHandler := handlers.NewAssistantHandler(assistant.NewClient(cfg.AssistantEndpoint, cfg.AssistantAPIKey))

	conversationWS := ws.NewConversationWebSocketHandler(hub, conversationRepo, participantRepo, cfg.JWTSecret)
	requestsWS := ws.NewRequestsWebSocketHandler(hub, participantRepo, cfg.JWTSecret)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id", "X-Device-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, participantRepo)

	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.POST("/conversations/start", authMiddleware, conversationHandler.StartConversation)
	router.GET("/conversations/candidates", authMiddleware, conversationHandler.ListCandidates)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, conversationHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, conversationHandler.PostMessage)

	router.GET("/interview-requests", authMiddleware, requestHandler.ListRequests)
	router.POST("/interview-requests", authMiddleware, requestHandler.CreateRequest)
	router.PATCH("/interview-requests/:request_id", authMiddleware, requestHandler.TransitionRequest)

	router.POST("/assistant/chat", authMiddleware, assistantHandler.Chat)

	router.GET("/ws/conversations/:conversation_id", conversationWS.Handle)
	router.GET("/ws/interview-requests", requestsWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
