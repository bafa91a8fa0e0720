package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/bedrock"

	"bedrockchat/internal/config"
	"bedrockchat/internal/domain"
	"bedrockchat/internal/llm"
	"bedrockchat/internal/logging"
	"bedrockchat/internal/repository/dynamo"
	"bedrockchat/internal/service"
	"bedrockchat/internal/storage"
	"bedrockchat/internal/transport/http/handlers"
	"bedrockchat/internal/transport/http/middleware"
	"bedrockchat/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "bedrockchat",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	ctx := context.Background()

	// Stores
	awsCfg, dynamoClient, err := dynamo.Connect(ctx, cfg)
	if err != nil {
		logger.Error("connecting to dynamodb", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to dynamodb", "region", cfg.AWSRegion)

	credentials := dynamo.NewCredentialRepo(dynamoClient, cfg.AuthTableName)
	codec := dynamo.NewDecimalCodec(dynamo.Codec{})
	dataLayer := dynamo.NewDataLayerStore(dynamoClient, cfg.DataTableName, codec)
	elements := storage.NewElementStore(awsCfg, cfg.ElementBucket, cfg.S3Endpoint)

	// LLM
	provider, err := llm.New(cfg.LLMProvider, awsCfg, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		logger.Error("building llm provider", "error", err)
		os.Exit(1)
	}
	catalog := service.NewModelCatalog(bedrock.NewFromConfig(awsCfg))

	// Services
	authService := service.NewAuthService(credentials, dataLayer, service.AdminConfig{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}, logger)
	chatService := service.NewChatService(provider, dataLayer, cfg.SystemPrompt, logger)

	// Admin bootstrap is best-effort: a failure is logged, never fatal.
	if err := authService.EnsureAdminProvisioned(ctx); err != nil {
		logger.Error("admin provisioning failed", "error", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, dataLayer, cfg.JWTSecret, logger)
	chatHandler := handlers.NewChatHandler(chatService, catalog, elements, logger)

	manager := ws.NewManager(logger)
	go manager.Run()

	auth := middleware.Auth(cfg.JWTSecret)
	defaults := domain.ChatSettings{Model: cfg.DefaultModel, Temperature: cfg.DefaultTemperature}

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected
	mux.Handle("GET /api/v1/models", auth(http.HandlerFunc(chatHandler.Models)))
	mux.Handle("GET /api/v1/threads", auth(http.HandlerFunc(chatHandler.Threads)))
	mux.Handle("GET /api/v1/threads/{id}", auth(http.HandlerFunc(chatHandler.Thread)))
	mux.Handle("POST /api/v1/elements", auth(http.HandlerFunc(chatHandler.CreateElement)))
	mux.Handle("GET /api/v1/elements/{key...}", auth(http.HandlerFunc(chatHandler.Element)))

	// Chat session (auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(manager, chatService, cfg.JWTSecret, defaults, logger))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
