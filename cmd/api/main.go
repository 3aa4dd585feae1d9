package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"unimarket/internal/adapter/api"
	"unimarket/internal/adapter/api/handler"
	apimiddleware "unimarket/internal/adapter/api/middleware"
	"unimarket/internal/adapter/api/router"
	"unimarket/internal/adapter/repository"
	"unimarket/internal/infrastructure/firebase"
	"unimarket/internal/infrastructure/ratelimit"
	"unimarket/internal/infrastructure/websocket"
	"unimarket/internal/usecase"
	"unimarket/pkg/config"
	"unimarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Service account from env var in production, from file locally.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		logger.Info("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	adminAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	// Infrastructure
	authClient := firebase.NewAuthClient(adminAuth, cfg.FirebaseApiKey)
	wsManager := websocket.NewManager()
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	// Repositories
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	offerRepo := repository.NewFirestoreOfferRepository(firestoreClient)
	roomRepo := repository.NewFirestoreRoomRepository(firestoreClient)
	convRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)

	// Use cases
	authUseCase := usecase.NewAuthUseCase(userRepo, authClient)
	exchangeUseCase := usecase.NewExchangeUseCase(offerRepo, userRepo, rateLimiter)
	roomUseCase := usecase.NewRoomUseCase(roomRepo, userRepo, rateLimiter)
	messagingUseCase := usecase.NewMessagingUseCase(convRepo, messageRepo, userRepo, wsManager, rateLimiter)

	authMiddleware := apimiddleware.NewAuthMiddleware(adminAuth)

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authUseCase),
		User:     handler.NewUserHandler(authUseCase),
		Exchange: handler.NewExchangeHandler(exchangeUseCase),
		Room:     handler.NewRoomHandler(roomUseCase),
		Message:  handler.NewMessageHandler(messagingUseCase),
		WebSocket: handler.NewWebSocketHandler(
			wsManager,
			authMiddleware,
			exchangeUseCase,
			roomUseCase,
			messagingUseCase,
		),
		Health: handler.NewHealthHandler(),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	router.Setup(e, handlers, authMiddleware)

	logger.Info("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
