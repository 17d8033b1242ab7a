package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ujjwal-07/RAG-CHAT/internal/ai"
	appsvc "github.com/ujjwal-07/RAG-CHAT/internal/app"
	"github.com/ujjwal-07/RAG-CHAT/internal/bootstrap"
	"github.com/ujjwal-07/RAG-CHAT/internal/cache"
	"github.com/ujjwal-07/RAG-CHAT/internal/platform/rabbitmq"
	"github.com/ujjwal-07/RAG-CHAT/internal/rag"
	"github.com/ujjwal-07/RAG-CHAT/internal/repository"
	"github.com/ujjwal-07/RAG-CHAT/internal/transport/http/handler"
	"github.com/ujjwal-07/RAG-CHAT/internal/transport/http/middleware"
	"github.com/ujjwal-07/RAG-CHAT/internal/vision"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	llmClient := ai.NewOpenAICompatibleClient()
	embedder := ai.NewEmbedder(llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	generator := ai.NewGenerator(llmClient, ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})

	chunker := rag.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	policy := rag.DefaultPolicy()
	policy.TopK = cfg.Retrieval.TopK
	policy.ContextThreshold = cfg.Retrieval.ContextThreshold
	policy.DefaultThreshold = cfg.Retrieval.DefaultThreshold
	if len(cfg.Retrieval.ContextKeywords) > 0 {
		policy.ContextKeywords = cfg.Retrieval.ContextKeywords
	}
	if len(cfg.Retrieval.SummaryKeywords) > 0 {
		policy.SummaryKeywords = cfg.Retrieval.SummaryKeywords
	}
	retriever := rag.NewRetriever(chunkRepo, policy)
	composer := rag.NewComposer(cfg.Chat.HistoryWindow)
	pipeline := rag.NewPipeline(chunker, embedder, chunkRepo, retriever, composer, generator)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	turnGuard := cache.NewTurnGuard(app.Redis, time.Duration(cfg.Redis.TurnGuardTTLSeconds)*time.Second)
	messagePublisher := rabbitmq.NewMessagePublisher(app.MQConn, cfg.RabbitMQ.MessagePersistQueue)

	var labeler *vision.Labeler
	if cfg.Vision.ModelPath != "" {
		labeler = vision.NewLabeler(cfg.Vision.ModelPath, cfg.Vision.LabelsPath, cfg.Vision.ONNXSharedLibPath, cfg.Vision.TopK)
	}

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	docService := appsvc.NewDocumentService(docRepo, chunkRepo, chatRepo, pipeline)
	chatService := appsvc.NewChatService(
		chatRepo,
		messageRepo,
		docRepo,
		messagePublisher,
		historyCache,
		turnGuard,
		pipeline,
		cfg.Chat.HistoryWindow,
	)

	authHandler := handler.NewAuthHandler(authService)
	docHandler := handler.NewDocumentHandler(docService, labeler, cfg.Upload.MaxFileSizeMB, cfg.Upload.ParseTimeoutSeconds)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	docGroup.POST("", docHandler.Create)
	docGroup.POST("/upload", docHandler.Upload)
	docGroup.GET("", docHandler.List)
	docGroup.GET("/:id", docHandler.Get)
	docGroup.DELETE("/:id", docHandler.Delete)

	chatGroup := v1.Group("/chats")
	chatGroup.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	chatGroup.POST("", chatHandler.CreateChat)
	chatGroup.GET("", chatHandler.ListChats)
	chatGroup.DELETE("/:id", chatHandler.DeleteChat)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/:id/messages", chatHandler.GetHistory)
	chatGroup.DELETE("/:id/messages/last", chatHandler.DeleteLastMessage)

	return router
}
